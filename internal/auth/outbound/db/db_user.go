package db

import (
	"context"

	"github.com/tasklet-app/tasklet/internal/auth/entity"
)

const queryGetUserByPhone = `
SELECT id, phone, status, created_at, updated_at
FROM auth_users
WHERE phone = $1
`

func (s *DB) GetUserByPhone(ctx context.Context, phone string) (user *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByPhone")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, queryGetUserByPhone, phone).
		Scan(&u.ID, &u.Phone, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}

const queryGetUserByID = `
SELECT id, phone, status, created_at, updated_at
FROM auth_users
WHERE id = $1
`

func (s *DB) GetUserByID(ctx context.Context, id int64) (user *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, queryGetUserByID, id).
		Scan(&u.ID, &u.Phone, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}

const queryCreateUser = `
INSERT INTO auth_users (id, phone, status)
VALUES ($1, $2, $3)
`

func (s *DB) CreateUser(ctx context.Context, user entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateUser, user.ID, user.Phone, user.Status)
	return s.mapError(err)
}
