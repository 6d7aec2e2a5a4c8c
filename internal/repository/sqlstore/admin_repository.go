package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bragawork/internal/models"
	"bragawork/internal/util"
)

type adminRepository struct {
	db Engine
}

func NewAdminRepository(db Engine) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) GetActiveByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, full_name, email, is_active, last_login, created_at, updated_at
		FROM admin_users
		WHERE username = %s AND is_active = %s`, r.db.Placeholder(1), r.db.Placeholder(2))

	u := &models.AdminUser{}
	err := r.db.QueryRow(ctx, query, username, true).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email,
		&u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return u, nil
}

func (r *adminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM admin_users WHERE username = %s`, r.db.Placeholder(1))

	var n int64
	if err := r.db.QueryRow(ctx, query, username).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check admin user: %w", err)
	}
	return n > 0, nil
}

func (r *adminRepository) Create(ctx context.Context, user *models.AdminUser) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO admin_users (username, password_hash, full_name, email)
		VALUES (%s)`, placeholders(r.db, 1, 4))

	id, err := r.db.InsertAndGetID(ctx, query, user.Username, user.PasswordHash, user.FullName, user.Email)
	if err != nil {
		return 0, fmt.Errorf("failed to create admin user: %w", err)
	}
	user.ID = id

	util.Info("Admin user created",
		util.Int64("admin_id", id),
		util.String("username", user.Username),
	)
	return id, nil
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`
		UPDATE admin_users SET last_login = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = %s`, r.db.Placeholder(1))

	res, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
