// Package cache keeps a local SQLite copy of the books the client has seen,
// so that list and show keep working while the server is unreachable. Rows
// are keyed by owner; tokens and credentials are never stored.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/booklib/internal/client/api"
	"github.com/dmitrijs2005/booklib/internal/client/cache/migrations"
	"github.com/dmitrijs2005/booklib/internal/dbx"
)

// ErrNotCached is returned when the requested book has no local copy.
var ErrNotCached = errors.New("book is not in the local cache")

type Store struct {
	db *sql.DB
}

// RunMigrations applies the embedded schema to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the cache database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: SQLite has a single writer and ":memory:" is per connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache migration error: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceBooks makes books the complete cached library of owner.
func (s *Store) ReplaceBooks(ctx context.Context, owner string, books []api.Book) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE owner_id = ?`, owner); err != nil {
			return fmt.Errorf("failed to clear books: %w", err)
		}
		for i := range books {
			if err := upsert(ctx, tx, owner, &books[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) PutBook(ctx context.Context, owner string, b *api.Book) error {
	return upsert(ctx, s.db, owner, b)
}

func upsert(ctx context.Context, db dbx.DBTX, owner string, b *api.Book) error {
	query := `INSERT INTO books (owner_id, id, title, author, description, cover_image, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, id) DO UPDATE SET title = excluded.title,
				author = excluded.author,
				description = excluded.description,
				cover_image = excluded.cover_image,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at`

	_, err := db.ExecContext(ctx, query, owner, b.ID, b.Title, b.Author, b.Description, b.CoverImage,
		b.CreatedAt.UnixNano(), b.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert book: %w", err)
	}
	return nil
}

// DeleteBook drops the local copy; a missing row is not an error.
func (s *Store) DeleteBook(ctx context.Context, owner, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE owner_id = ? AND id = ?`, owner, id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// ListBooks returns the cached library of owner, newest first.
func (s *Store) ListBooks(ctx context.Context, owner string) ([]api.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, author, description, cover_image, created_at, updated_at
		FROM books WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select books: %w", err)
	}
	defer rows.Close()

	result := []api.Book{}
	for rows.Next() {
		b, err := scanBook(rows, owner)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) GetBook(ctx context.Context, owner, id string) (*api.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, author, description, cover_image, created_at, updated_at
		FROM books WHERE owner_id = ? AND id = ?`, owner, id)

	b, err := scanBook(row, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	return b, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner, owner string) (*api.Book, error) {
	b := &api.Book{UserID: owner}
	var created, updated int64
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.CoverImage, &created, &updated); err != nil {
		return nil, err
	}
	b.CreatedAt, b.UpdatedAt = time.Unix(0, created).UTC(), time.Unix(0, updated).UTC()
	return b, nil
}
