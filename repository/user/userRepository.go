package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"librarymgmt/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error)
	UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error)
	UpdateStatus(ctx context.Context, id int64, status model.UserStatus) (*model.User, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const userCols = `id, name, email, password_hash, role, status, created_at`

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users(name, email, password_hash, role, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Status,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userCols+`
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) UpdateProfile(ctx context.Context, id int64, name, email string) (*model.User, error) {
	return r.scanUpdated(ctx, `
		UPDATE users
		SET name = $2, email = $3
		WHERE id = $1
		RETURNING `+userCols, id, name, email)
}

func (r *repo) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	return r.scanUpdated(ctx, `
		UPDATE users
		SET role = $2
		WHERE id = $1
		RETURNING `+userCols, id, role)
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, status model.UserStatus) (*model.User, error) {
	return r.scanUpdated(ctx, `
		UPDATE users
		SET status = $2
		WHERE id = $1
		RETURNING `+userCols, id, status)
}

func (r *repo) scanUpdated(ctx context.Context, q string, args ...any) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, q, args...).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
