package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/dbx"
	"github.com/dmitrijs2005/booklib/internal/server/models"
)

// Names of the unique constraints on the users table.
const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

const selectUser = `SELECT id, fullname, username, email, password_hash, created_at FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user and fills in its id and creation time. A concurrent
// signup that wins the race on email or username surfaces as
// common.ErrEmailExists or common.ErrUsernameExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (fullname, username, email, password_hash)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.FullName, user.UserName, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok {
			switch constraint {
			case emailConstraint:
				return nil, common.ErrEmailExists
			case usernameConstraint:
				return nil, common.ErrUsernameExists
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// FindByEmailOrUsername returns a user whose email or username matches.
// When two different users match, the email match wins.
func (r *PostgresRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	query := selectUser + `
		 WHERE email = $1 OR username = $2
		 ORDER BY (email = $1) DESC
		 LIMIT 1
		 `

	return r.scanOne(ctx, query, email, username)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := selectUser + `
		 WHERE email = $1
		 `

	return r.scanOne(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := selectUser + `
		 WHERE id = $1
		 `

	return r.scanOne(ctx, query, id)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.FullName, &user.UserName, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
