// Package books provides the PostgreSQL-backed, ownership-scoped book store.
package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/dbx"
	"github.com/dmitrijs2005/booklib/internal/server/models"
)

// PostgresRepository implements book storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByOwner returns the owner's books, newest first. The result is never nil.
func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Book, error) {
	query := `SELECT id, user_id, title, author, description, cover_image, created_at, updated_at FROM books
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Book, 0)
	for rows.Next() {
		var item models.Book
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.Author, &item.Description,
			&item.CoverImage, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// GetByOwner returns the book with the given id if it belongs to owner.
func (r *PostgresRepository) GetByOwner(ctx context.Context, owner, id string) (*models.Book, error) {
	query := `SELECT id, user_id, title, author, description, cover_image, created_at, updated_at FROM books
		WHERE id = $1 AND user_id = $2
		`
	item := &models.Book{}
	err := r.db.QueryRowContext(ctx, query, id, owner).Scan(
		&item.ID, &item.UserID, &item.Title, &item.Author, &item.Description,
		&item.CoverImage, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Create inserts book for book.UserID and fills in the generated columns.
func (r *PostgresRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	query := `
		INSERT INTO books (user_id, title, author, description, cover_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		book.UserID, book.Title, book.Author, book.Description, book.CoverImage,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return book, nil
}

// UpdateByOwner overwrites the editable fields of the book identified by
// book.ID and book.UserID and bumps updated_at.
func (r *PostgresRepository) UpdateByOwner(ctx context.Context, book *models.Book) (*models.Book, error) {
	query := `
		UPDATE books SET
			title = $1,
			author = $2,
			description = $3,
			cover_image = $4,
			updated_at = now()
		WHERE id = $5 AND user_id = $6
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		book.Title, book.Author, book.Description, book.CoverImage, book.ID, book.UserID,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return book, nil
}

// DeleteByOwner removes the book if it belongs to owner.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, owner, id string) error {
	query := `DELETE FROM books WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
