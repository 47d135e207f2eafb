package usersvc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mityuk17/library-service-api/model"
	"github.com/mityuk17/library-service-api/util/hash"
)

var (
	ErrBadInput     = errors.New("bad input")
	ErrLoginTaken   = errors.New("login already taken")
	ErrUserNotFound = errors.New("user not found")
)

type Repo interface {
	Insert(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error
}

// Notifier delivers the account-creation mail. Implementations must be safe
// to call from a background goroutine.
type Notifier interface {
	AccountCreated(ctx context.Context, email, login, password string) error
}

type NewUser struct {
	Email    string
	Login    string
	Password string
	Role     model.Role
}

type Service interface {
	Create(ctx context.Context, nu NewUser) (*model.User, error)
	Update(ctx context.Context, patch model.UserPatch) error
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	r        Repo
	notifier Notifier
	log      *slog.Logger
}

func New(r Repo, notifier Notifier, log *slog.Logger) Service {
	return &service{r: r, notifier: notifier, log: log}
}

func (s *service) Create(ctx context.Context, nu NewUser) (*model.User, error) {
	nu.Login = strings.TrimSpace(nu.Login)
	nu.Email = strings.TrimSpace(nu.Email)
	if nu.Login == "" || nu.Email == "" || nu.Password == "" {
		return nil, ErrBadInput
	}
	if _, err := model.ParseRole(string(nu.Role)); err != nil {
		return nil, ErrBadInput
	}

	hashed, err := hash.HashPassword(nu.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        nu.Email,
		Login:        nu.Login,
		PasswordHash: hashed,
		Role:         nu.Role,
		Active:       true,
	}
	if err := s.r.Insert(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrLoginTaken
		}
		return nil, err
	}

	// Mail delivery must not hold up or fail the request.
	go func(email, login, password string) {
		if err := s.notifier.AccountCreated(context.Background(), email, login, password); err != nil {
			s.log.Error("account mail failed", "login", login, "err", err)
		}
	}(u.Email, u.Login, nu.Password)

	return u, nil
}

func (s *service) Update(ctx context.Context, patch model.UserPatch) error {
	cur, err := s.r.ByID(ctx, patch.ID)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrUserNotFound
	}
	if patch.Role != nil {
		if _, err := model.ParseRole(string(*patch.Role)); err != nil {
			return ErrBadInput
		}
	}

	merged := patch.Apply(*cur)
	if patch.Password != nil && *patch.Password != "" {
		hashed, err := hash.HashPassword(*patch.Password)
		if err != nil {
			return err
		}
		merged.PasswordHash = hashed
	}
	if err := s.r.Update(ctx, &merged); err != nil {
		if isUniqueViolation(err) {
			return ErrLoginTaken
		}
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]model.User, error) {
	return s.r.List(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	return s.r.Delete(ctx, id)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
