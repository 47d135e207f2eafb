package bookrepo

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"

	"github.com/mityuk17/library-service-api/model"
	"github.com/mityuk17/library-service-api/util/database"
)

var pg = goqu.Dialect("postgres")

// Filter narrows a book search to one reference id. At most one field is set
// per request; unset fields do not constrain the query.
type Filter struct {
	AuthorID    *int64
	PublisherID *int64
	GenreID     *int64
}

type Repo interface {
	Insert(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Search(ctx context.Context, f Filter) ([]model.Book, error)
	UpdateDetails(ctx context.Context, b *model.Book) error
	CompareAndSwap(ctx context.Context, expected, next *model.Book) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (name, author_id, publisher_id, genre_id, reserved_at, in_stock)
VALUES ($1,$2,$3,$4,0,TRUE)
RETURNING id`
	return r.db.Pool.QueryRow(ctx, q, b.Name, b.AuthorID, b.PublisherID, b.GenreID).Scan(&b.ID)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, name, author_id, publisher_id, genre_id, reserved_at, reserved_by, in_stock, owner_id
FROM books
WHERE id = $1`
	b := &model.Book{}
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&b.ID, &b.Name, &b.AuthorID, &b.PublisherID, &b.GenreID,
		&b.ReservedAt, &b.ReservedBy, &b.InStock, &b.OwnerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) Search(ctx context.Context, f Filter) ([]model.Book, error) {
	q := pg.From("books").
		Select("id", "name", "author_id", "publisher_id", "genre_id",
			"reserved_at", "reserved_by", "in_stock", "owner_id").
		Order(goqu.C("id").Asc())
	if f.AuthorID != nil {
		q = q.Where(goqu.C("author_id").Eq(*f.AuthorID))
	}
	if f.PublisherID != nil {
		q = q.Where(goqu.C("publisher_id").Eq(*f.PublisherID))
	}
	if f.GenreID != nil {
		q = q.Where(goqu.C("genre_id").Eq(*f.GenreID))
	}

	sqlStr, args, err := q.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Name, &b.AuthorID, &b.PublisherID, &b.GenreID,
			&b.ReservedAt, &b.ReservedBy, &b.InStock, &b.OwnerID,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateDetails writes only the descriptive columns. Reservation and stock
// state go through CompareAndSwap exclusively, so a metadata edit can never
// clobber a concurrent transition.
func (r *repo) UpdateDetails(ctx context.Context, b *model.Book) error {
	const q = `
UPDATE books
SET name = $2, author_id = $3, publisher_id = $4, genre_id = $5
WHERE id = $1`
	_, err := r.db.Pool.Exec(ctx, q, b.ID, b.Name, b.AuthorID, b.PublisherID, b.GenreID)
	return err
}

// CompareAndSwap applies the reservation/stock columns of next only when the
// row still matches the state previously observed in expected. Reports false
// when the row changed in between; the caller re-reads and retries.
func (r *repo) CompareAndSwap(ctx context.Context, expected, next *model.Book) (bool, error) {
	q := pg.Update("books").
		Set(goqu.Record{
			"reserved_at": next.ReservedAt,
			"reserved_by": nullableID(next.ReservedBy),
			"in_stock":    next.InStock,
			"owner_id":    nullableID(next.OwnerID),
		}).
		Where(
			goqu.C("id").Eq(expected.ID),
			goqu.C("reserved_at").Eq(expected.ReservedAt),
			goqu.C("in_stock").Eq(expected.InStock),
			goqu.L("reserved_by IS NOT DISTINCT FROM ?", nullableID(expected.ReservedBy)),
			goqu.L("owner_id IS NOT DISTINCT FROM ?", nullableID(expected.OwnerID)),
		)

	sqlStr, args, err := q.Prepared(true).ToSQL()
	if err != nil {
		return false, err
	}
	tag, err := r.db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	return err
}

func nullableID(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
