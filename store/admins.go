package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"acai-store/models"
)

func (s *Store) GetAdminByLogin(ctx context.Context, login string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, login, password_hash FROM admins WHERE login = ?`, login).
		Scan(&a.ID, &a.Name, &a.Login, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query admin: %w", err)
	}
	return &a, nil
}

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) error {
	if _, err := s.GetAdminByLogin(ctx, a.Login); err == nil {
		return ErrDuplicateLogin
	} else if !errors.Is(err, ErrAdminNotFound) {
		return err
	}

	a.ID = s.newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (id, name, login, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Login, a.PasswordHash, s.now())
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}
