// service/book/bookService_test.go
package booksvc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mityuk17/library-service-api/model"
	booksvc "github.com/mityuk17/library-service-api/service/book"
)

type repoMock struct {
	insertFn  func(ctx context.Context, b *model.Book) error
	byIDFn    func(ctx context.Context, id int64) (*model.Book, error)
	searchFn  func(ctx context.Context, f booksvc.Filter) ([]model.Book, error)
	updateFn  func(ctx context.Context, b *model.Book) error
	deleteFn  func(ctx context.Context, id int64) error
	lastWrite *model.Book
}

func (m *repoMock) Insert(ctx context.Context, b *model.Book) error {
	m.lastWrite = b
	if m.insertFn != nil {
		return m.insertFn(ctx, b)
	}
	b.ID = 1
	return nil
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	if m.byIDFn != nil {
		return m.byIDFn(ctx, id)
	}
	return nil, nil
}
func (m *repoMock) Search(ctx context.Context, f booksvc.Filter) ([]model.Book, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, f)
	}
	return nil, nil
}
func (m *repoMock) UpdateDetails(ctx context.Context, b *model.Book) error {
	m.lastWrite = b
	if m.updateFn != nil {
		return m.updateFn(ctx, b)
	}
	return nil
}
func (m *repoMock) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type resolverMock struct {
	resolved map[string]int64
	nextID   int64
}

func (r *resolverMock) Resolve(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error) {
	if r.resolved == nil {
		r.resolved = map[string]int64{}
	}
	key := string(kind) + "/" + name
	if id, ok := r.resolved[key]; ok {
		return &model.RefEntity{ID: id, Name: name}, nil
	}
	r.nextID++
	r.resolved[key] = r.nextID
	return &model.RefEntity{ID: r.nextID, Name: name}, nil
}

func (r *resolverMock) ByID(ctx context.Context, kind model.RefKind, id int64) (*model.RefEntity, error) {
	for key, got := range r.resolved {
		if got == id && key[:len(kind)] == string(kind) {
			return &model.RefEntity{ID: id}, nil
		}
	}
	return nil, nil
}

func TestCreate_ResolvesReferences(t *testing.T) {
	m := &repoMock{}
	res := &resolverMock{}
	s := booksvc.New(m, res)

	b, err := s.Create(context.Background(), booksvc.NewBook{
		Name: "Roadside Picnic", Author: "Strugatsky", Publisher: "Macmillan", Genre: "Sci-Fi",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.AuthorID == nil || b.PublisherID == nil || b.GenreID == nil {
		t.Fatal("all three references must be resolved")
	}
	if !b.InStock || b.ReservedAt != 0 {
		t.Fatal("new books start in stock and unreserved")
	}

	// A second book by the same author reuses the row.
	b2, err := s.Create(context.Background(), booksvc.NewBook{
		Name: "Hard to Be a God", Author: "Strugatsky", Publisher: "Macmillan", Genre: "Sci-Fi",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if *b2.AuthorID != *b.AuthorID {
		t.Errorf("author rows differ: %d vs %d", *b2.AuthorID, *b.AuthorID)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{}, &resolverMock{})
	if _, err := s.Create(context.Background(), booksvc.NewBook{Name: "  "}); !errors.Is(err, booksvc.ErrBadInput) {
		t.Fatalf("got %v, want ErrBadInput", err)
	}
}

func TestUpdate_PartialMerge(t *testing.T) {
	author := int64(3)
	cur := &model.Book{ID: 9, Name: "Dune", AuthorID: &author, InStock: true}
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) { return cur, nil },
	}
	s := booksvc.New(m, &resolverMock{})

	name := "Dune Messiah"
	if err := s.Update(context.Background(), model.BookPatch{ID: 9, Name: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if m.lastWrite.Name != "Dune Messiah" {
		t.Errorf("Name = %q, want merged value", m.lastWrite.Name)
	}
	if m.lastWrite.AuthorID == nil || *m.lastWrite.AuthorID != 3 {
		t.Error("nil patch fields must keep current values")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := booksvc.New(&repoMock{}, &resolverMock{})
	name := "x"
	if err := s.Update(context.Background(), model.BookPatch{ID: 404, Name: &name}); !errors.Is(err, booksvc.ErrBookNotFound) {
		t.Fatalf("got %v, want ErrBookNotFound", err)
	}
}

func TestByGenre_UnknownRef(t *testing.T) {
	s := booksvc.New(&repoMock{}, &resolverMock{})
	if _, err := s.ByGenre(context.Background(), 77); !errors.Is(err, booksvc.ErrRefNotFound) {
		t.Fatalf("got %v, want ErrRefNotFound", err)
	}
}

func TestByGenre_FiltersSearch(t *testing.T) {
	res := &resolverMock{}
	e, _ := res.Resolve(context.Background(), model.RefGenre, "Sci-Fi")

	var got booksvc.Filter
	m := &repoMock{searchFn: func(ctx context.Context, f booksvc.Filter) ([]model.Book, error) {
		got = f
		return []model.Book{{ID: 1}}, nil
	}}
	s := booksvc.New(m, res)

	rows, err := s.ByGenre(context.Background(), e.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows=%v err=%v", rows, err)
	}
	if got.GenreID == nil || *got.GenreID != e.ID {
		t.Errorf("search filter = %+v, want genre %d", got, e.ID)
	}
}
