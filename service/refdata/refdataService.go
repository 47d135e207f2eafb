package refdatasvc

import (
	"context"
	"errors"
	"strings"

	"github.com/mityuk17/library-service-api/model"
)

var ErrEmptyName = errors.New("reference name must not be empty")

type Repo interface {
	ByID(ctx context.Context, kind model.RefKind, id int64) (*model.RefEntity, error)
	ByName(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error)
	InsertIfAbsent(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error)
}

type Service interface {
	// Resolve returns the canonical entity for the name, creating it on first
	// use. Safe to call concurrently for the same new name: the repository's
	// uniqueness constraint picks a single winner and everyone gets its row.
	Resolve(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error)

	// ByID returns the entity or nil when the id is unknown.
	ByID(ctx context.Context, kind model.RefKind, id int64) (*model.RefEntity, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Resolve(ctx context.Context, kind model.RefKind, name string) (*model.RefEntity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	e, err := s.r.ByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}
	return s.r.InsertIfAbsent(ctx, kind, name)
}

func (s *service) ByID(ctx context.Context, kind model.RefKind, id int64) (*model.RefEntity, error) {
	return s.r.ByID(ctx, kind, id)
}
