package model

// RefKind selects one of the deduplicated lookup tables.
type RefKind string

const (
	RefAuthor    RefKind = "author"
	RefGenre     RefKind = "genre"
	RefPublisher RefKind = "publisher"
)

// RefEntity is a reference row (author, genre or publisher). Identity is the
// name: rows are created lazily on first use and never deleted, so any number
// of books may point at the same row.
type RefEntity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
