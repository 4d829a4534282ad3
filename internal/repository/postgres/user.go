package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, email, name, subscription_tier, role, status, preferred_category,
			  array_to_string(locked_fields, ','), created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) ActiveUsers(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE status = $1 ORDER BY id`

	rows, err := r.db.DB.QueryContext(ctx, query, model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) SetStatus(ctx context.Context, id int64, status model.UserStatus) error {
	query := `UPDATE users SET status = $1, updated_at = now() WHERE id = $2`

	res, err := r.db.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		user   model.User
		locked string
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Tier, &user.Role, &user.Status,
		&user.PreferredCategory, &locked, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	var names []string
	if locked != "" {
		names = strings.Split(locked, ",")
	}
	user.LockedFields = model.NewLockedFields(names...)

	return user, nil
}
