package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mityuk17/library-service-api/model"
	"github.com/mityuk17/library-service-api/util/database"
)

type Repo interface {
	Insert(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByLogin(ctx context.Context, login string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(email, login, password_hash, role, active)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		u.Email, u.Login, u.PasswordHash, u.Role, u.Active,
	).Scan(&u.ID)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.one(ctx, `
		SELECT id, email, login, password_hash, role, active
		FROM users
		WHERE id = $1`, id)
}

func (r *repo) ByLogin(ctx context.Context, login string) (*model.User, error) {
	return r.one(ctx, `
		SELECT id, email, login, password_hash, role, active
		FROM users
		WHERE login = $1`, login)
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.Login, &u.PasswordHash, &u.Role, &u.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, email, login, password_hash, role, active
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Login, &u.PasswordHash, &u.Role, &u.Active); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE users
		SET email = $2, login = $3, password_hash = $4, role = $5, active = $6
		WHERE id = $1`,
		u.ID, u.Email, u.Login, u.PasswordHash, u.Role, u.Active,
	)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
