package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/azamazri/roomah-sub001/model"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users(first_name, last_name, email, role, password_hash)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		u.FirstName, u.LastName, u.Email, u.Role, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

const selectUser = `
SELECT id, first_name, last_name, email, role, password_hash, created_at
FROM users`

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+` WHERE lower(email) = lower($1)`, email))
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
}

func (r *repo) scanOne(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
