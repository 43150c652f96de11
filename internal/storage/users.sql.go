package storage

import (
	"context"
	"database/sql"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, password_hash, display_name, photo_url)
VALUES (?, ?, ?, ?, ?)
RETURNING id, email, password_hash, display_name, photo_url, created_at, last_login_at
`

type CreateUserParams struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	PhotoUrl     string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.PasswordHash,
		arg.DisplayName,
		arg.PhotoUrl,
	)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.DisplayName,
		&i.PhotoUrl,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const getUser = `-- name: GetUser :one
SELECT id, email, password_hash, display_name, photo_url, created_at, last_login_at
FROM users
WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.DisplayName,
		&i.PhotoUrl,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, password_hash, display_name, photo_url, created_at, last_login_at
FROM users
WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.DisplayName,
		&i.PhotoUrl,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const updateUserProfile = `-- name: UpdateUserProfile :one
UPDATE users
SET email = ?, display_name = ?, photo_url = ?
WHERE id = ?
RETURNING id, email, password_hash, display_name, photo_url, created_at, last_login_at
`

type UpdateUserProfileParams struct {
	Email       string
	DisplayName string
	PhotoUrl    string
	ID          string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRowContext(ctx, updateUserProfile,
		arg.Email,
		arg.DisplayName,
		arg.PhotoUrl,
		arg.ID,
	)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.DisplayName,
		&i.PhotoUrl,
		&i.CreatedAt,
		&i.LastLoginAt,
	)
	return i, err
}

const touchUserLogin = `-- name: TouchUserLogin :execrows
UPDATE users
SET last_login_at = ?
WHERE id = ?
`

type TouchUserLoginParams struct {
	LastLoginAt sql.NullString
	ID          string
}

func (q *Queries) TouchUserLogin(ctx context.Context, arg TouchUserLoginParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, touchUserLogin, arg.LastLoginAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
