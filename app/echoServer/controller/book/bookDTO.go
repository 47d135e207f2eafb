package book

type CreateBookReq struct {
	Name      string `json:"name" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Publisher string `json:"publisher" validate:"required"`
	Genre     string `json:"genre" validate:"required"`
}

// UpdateBookReq is a partial update: only non-null fields overwrite.
type UpdateBookReq struct {
	ID          int64   `json:"id" validate:"required,gt=0"`
	Name        *string `json:"name"`
	AuthorID    *int64  `json:"author_id"`
	PublisherID *int64  `json:"publisher_id"`
	GenreID     *int64  `json:"genre_id"`
}
