package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/mityuk17/library-service-api/model"
	"github.com/mityuk17/library-service-api/util/hash"
	jwtutil "github.com/mityuk17/library-service-api/util/jwt"

	"time"
)

var (
	ErrInvalidCreds = errors.New("invalid credentials")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type Repo interface {
	ByLogin(ctx context.Context, login string) (*model.User, error)
}

// Service is both the login endpoint's backend and the access gate the
// role-protected routes consult.
type Service interface {
	// Login verifies credentials and issues a bearer token.
	Login(ctx context.Context, login, password string) (string, error)

	// Authorize resolves the principal behind login and checks it against the
	// required role. ErrUnauthorized when no usable principal exists,
	// ErrForbidden on a role mismatch. No side effects.
	Authorize(ctx context.Context, login string, required model.Role) (*model.User, error)
}

type service struct {
	r        Repo
	secret   string
	tokenTTL time.Duration
}

func New(r Repo, secret string, tokenTTL time.Duration) Service {
	return &service{r: r, secret: secret, tokenTTL: tokenTTL}
}

func (s *service) Login(ctx context.Context, login, password string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", ErrInvalidCreds
	}
	u, err := s.r.ByLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if u == nil || !u.Active || !hash.Check(u.PasswordHash, password) {
		return "", ErrInvalidCreds
	}
	return jwtutil.Issue(s.secret, u.Login, s.tokenTTL)
}

func (s *service) Authorize(ctx context.Context, login string, required model.Role) (*model.User, error) {
	u, err := s.r.ByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active {
		return nil, ErrUnauthorized
	}
	if u.Role != required {
		return nil, ErrForbidden
	}
	return u, nil
}
