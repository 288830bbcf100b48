package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hamutea-admin/internal/shared/model"
	"hamutea-admin/internal/shared/storage"
)

const userColumns = `id, name, email, password, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers 列出所有用户（最新创建在前）
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, s.observe(ctx, "list", "users", start, err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, s.observe(ctx, "list", "users", start, err)
		}
		users = append(users, u)
	}
	return users, s.observe(ctx, "list", "users", start, rows.Err())
}

// GetUserByID 通过 ID 查找用户
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	start := time.Now()
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return u, s.observe(ctx, "get", "users", start, err)
}

// GetUserByEmail 通过邮箱查找用户
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE email = $1`), email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, s.observe(ctx, "get", "users", start, err)
}

// EmailTaken 检查邮箱是否已被其他用户使用
func (s *Store) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	start := time.Now()
	var id int64
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id FROM users WHERE email = $1 AND id <> $2`), email, excludeID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, s.observe(ctx, "check", "users", start, err)
	}
	return true, nil
}

// CreateUser 创建用户
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	start := time.Now()
	createdAt := now()
	id, err := s.insertReturningID(ctx,
		`INSERT INTO users (name, email, password, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.Name, user.Email, user.PasswordHash, string(user.Role), createdAt,
	)
	if err != nil {
		return s.observe(ctx, "insert", "users", start, err)
	}
	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// UpdateUser 更新用户
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	start := time.Now()
	if _, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE users SET name = $1, email = $2, password = $3, role = $4 WHERE id = $5`),
		user.Name, user.Email, user.PasswordHash, string(user.Role), user.ID,
	); err != nil {
		return s.observe(ctx, "update", "users", start, err)
	}
	return nil
}

// DeleteUser 删除用户
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	start := time.Now()
	return s.observe(ctx, "delete", "users", start,
		s.execAffectingOne(ctx, `DELETE FROM users WHERE id = $1`, id))
}
