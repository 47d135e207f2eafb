package booksvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	bookrepo "github.com/mityuk17/library-service-api/repository/book"

	"github.com/mityuk17/library-service-api/model"
)

var (
	ErrBadInput     = errors.New("bad input")
	ErrNameTaken    = errors.New("book name already taken")
	ErrBookNotFound = errors.New("book not found")
	ErrRefNotFound  = errors.New("reference entity not found")
)

type Filter = bookrepo.Filter

type Repo interface {
	Insert(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Search(ctx context.Context, f Filter) ([]model.Book, error)
	UpdateDetails(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type Resolver interface {
	Resolve(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error)
	ByID(ctx context.Context, kind model.RefKind, id int64) (*model.RefEntity, error)
}

// NewBook carries the creation payload; author, publisher and genre arrive as
// names and are resolved (or created) on the fly.
type NewBook struct {
	Name      string
	Author    string
	Publisher string
	Genre     string
}

type Service interface {
	Create(ctx context.Context, nb NewBook) (*model.Book, error)
	Update(ctx context.Context, patch model.BookPatch) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	ByAuthor(ctx context.Context, authorID int64) ([]model.Book, error)
	ByPublisher(ctx context.Context, publisherID int64) ([]model.Book, error)
	ByGenre(ctx context.Context, genreID int64) ([]model.Book, error)
}

type service struct {
	r   Repo
	ref Resolver
}

func New(r Repo, ref Resolver) Service { return &service{r: r, ref: ref} }

func (s *service) Create(ctx context.Context, nb NewBook) (*model.Book, error) {
	if strings.TrimSpace(nb.Name) == "" {
		return nil, ErrBadInput
	}

	author, err := s.ref.Resolve(ctx, model.RefAuthor, nb.Author)
	if err != nil {
		return nil, err
	}
	genre, err := s.ref.Resolve(ctx, model.RefGenre, nb.Genre)
	if err != nil {
		return nil, err
	}
	publisher, err := s.ref.Resolve(ctx, model.RefPublisher, nb.Publisher)
	if err != nil {
		return nil, err
	}

	b := &model.Book{
		Name:        strings.TrimSpace(nb.Name),
		AuthorID:    &author.ID,
		PublisherID: &publisher.ID,
		GenreID:     &genre.ID,
		InStock:     true,
	}
	if err := s.r.Insert(ctx, b); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, patch model.BookPatch) error {
	cur, err := s.r.ByID(ctx, patch.ID)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrBookNotFound
	}
	merged := patch.Apply(*cur)
	if err := s.r.UpdateDetails(ctx, &merged); err != nil {
		if isUniqueViolation(err) {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBookNotFound
	}
	return s.r.Delete(ctx, id)
}

func (s *service) List(ctx context.Context) ([]model.Book, error) {
	return s.r.Search(ctx, Filter{})
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookNotFound
	}
	return b, nil
}

func (s *service) ByAuthor(ctx context.Context, authorID int64) ([]model.Book, error) {
	return s.byRef(ctx, model.RefAuthor, authorID, Filter{AuthorID: &authorID})
}

func (s *service) ByPublisher(ctx context.Context, publisherID int64) ([]model.Book, error) {
	return s.byRef(ctx, model.RefPublisher, publisherID, Filter{PublisherID: &publisherID})
}

func (s *service) ByGenre(ctx context.Context, genreID int64) ([]model.Book, error) {
	return s.byRef(ctx, model.RefGenre, genreID, Filter{GenreID: &genreID})
}

func (s *service) byRef(ctx context.Context, kind model.RefKind, id int64, f Filter) ([]model.Book, error) {
	e, err := s.ref.ByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrRefNotFound
	}
	return s.r.Search(ctx, f)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
