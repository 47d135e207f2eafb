package refdatarepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mityuk17/library-service-api/model"
	"github.com/mityuk17/library-service-api/util/database"
)

type Repo interface {
	ByID(ctx context.Context, kind model.RefKind, id int64) (*model.RefEntity, error)
	ByName(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error)
	InsertIfAbsent(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func tableFor(kind model.RefKind) (string, error) {
	switch kind {
	case model.RefAuthor:
		return "authors", nil
	case model.RefGenre:
		return "genres", nil
	case model.RefPublisher:
		return "publishers", nil
	}
	return "", fmt.Errorf("unknown reference kind %q", kind)
}

func (r *repo) ByID(ctx context.Context, kind model.RefKind, id int64) (*model.RefEntity, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return r.one(ctx, fmt.Sprintf(`SELECT id, name FROM %s WHERE id = $1`, table), id)
}

func (r *repo) ByName(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return r.one(ctx, fmt.Sprintf(`SELECT id, name FROM %s WHERE name = $1`, table), name)
}

// InsertIfAbsent creates the row and returns it. When a concurrent caller
// wins the insert, the unique index on name rejects ours and we fall back to
// re-reading the winner's row, so every caller observes the same entity.
func (r *repo) InsertIfAbsent(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	e := &model.RefEntity{}
	err = r.db.Pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id, name`, table), name,
	).Scan(&e.ID, &e.Name)
	if err == nil {
		return e, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return r.ByName(ctx, kind, name)
	}
	return nil, err
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.RefEntity, error) {
	e := &model.RefEntity{}
	err := r.db.Pool.QueryRow(ctx, q, arg).Scan(&e.ID, &e.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
