// Package users provides the identity repository: the interface the
// services depend on and its PostgreSQL implementation.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

const selectUser = `SELECT record_id, firstname, lastname, username, email, password, refresh_token FROM users`

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (firstname, lastname, username, email, password, refresh_token)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING record_id`

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, user.UserName, user.Email, user.PasswordHash, nullString(user.RefreshToken),
	).Scan(&user.RecordID)

	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok {
			if constraint == "users_username_key" {
				return common.ErrHandleTaken
			}
			return common.ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE username = $1`, username)
}

func (r *PostgresRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE refresh_token = $1`, token)
}

func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, email string, token string) error {
	query := `UPDATE users SET refresh_token = $1 WHERE email = $2`

	res, err := r.db.ExecContext(ctx, query, nullString(token), email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var refreshToken sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.RecordID, &user.FirstName, &user.LastName, &user.UserName, &user.Email, &user.PasswordHash, &refreshToken,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.RefreshToken = refreshToken.String
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
