package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/dbx"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
)

var errTitleAuthorRequired = common.NewError(common.ErrValidation, "Title and author are required")

// BookService implements the owner-scoped book operations. The owner is the
// authenticated user id; books of other users behave as if they did not exist.
type BookService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	defaultCover string
	logger       logging.Logger
}

// NewBookService creates a BookService; an empty defaultCover selects the built-in placeholder.
func NewBookService(db *sql.DB, m repomanager.RepositoryManager, defaultCover string, logger logging.Logger) *BookService {
	if defaultCover == "" {
		defaultCover = common.DefaultCoverImage
	}
	return &BookService{
		db:           db,
		repomanager:  m,
		defaultCover: defaultCover,
		logger:       logger,
	}
}

// List returns the owner's books, newest first.
func (s *BookService) List(ctx context.Context, owner string) ([]*models.Book, error) {
	books, err := s.repomanager.Books(s.db).ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("error listing books: %w", err)
	}
	if books == nil {
		books = []*models.Book{}
	}
	return books, nil
}

func (s *BookService) Get(ctx context.Context, owner, id string) (*models.Book, error) {
	if !isUUID(id) {
		return nil, common.ErrBookNotFound
	}

	book, err := s.repomanager.Books(s.db).GetByOwner(ctx, owner, id)
	if err != nil {
		return nil, bookError(err, "error getting book")
	}
	return book, nil
}

// Create stores a new book. A missing or unusable cover URL is replaced by
// the placeholder image.
func (s *BookService) Create(ctx context.Context, owner string, in models.BookInput) (*models.Book, error) {
	title, author, err := requireTitleAuthor(in)
	if err != nil {
		return nil, err
	}

	cover := s.defaultCover
	if in.CoverImage != nil {
		if u, ok := coverURL(*in.CoverImage); ok {
			cover = u
		}
	}

	book, err := s.repomanager.Books(s.db).Create(ctx, &models.Book{
		UserID:      owner,
		Title:       title,
		Author:      author,
		Description: in.Description,
		CoverImage:  cover,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating book: %w", err)
	}

	s.logger.Debug(ctx, "book created", "user_id", owner, "book_id", book.ID)

	return book, nil
}

// Update replaces the editable fields of a book. The ownership check runs
// before validation. An omitted cover keeps the stored one, and so does a
// cover that is present but not a usable URL.
func (s *BookService) Update(ctx context.Context, owner, id string, in models.BookInput) (*models.Book, error) {
	if !isUUID(id) {
		return nil, common.ErrBookNotFound
	}

	var updated *models.Book

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Books(tx)

		existing, err := repo.GetByOwner(ctx, owner, id)
		if err != nil {
			return bookError(err, "error getting book")
		}

		title, author, err := requireTitleAuthor(in)
		if err != nil {
			return err
		}

		cover := existing.CoverImage
		if in.CoverImage != nil {
			if u, ok := coverURL(*in.CoverImage); ok {
				cover = u
			}
		}

		existing.Title = title
		existing.Author = author
		existing.Description = in.Description
		existing.CoverImage = cover

		updated, err = repo.UpdateByOwner(ctx, existing)
		if err != nil {
			return bookError(err, "error updating book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "book updated", "user_id", owner, "book_id", id)

	return updated, nil
}

func (s *BookService) Delete(ctx context.Context, owner, id string) error {
	if !isUUID(id) {
		return common.ErrBookNotFound
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Books(tx)

		if _, err := repo.GetByOwner(ctx, owner, id); err != nil {
			return bookError(err, "error getting book")
		}
		if err := repo.DeleteByOwner(ctx, owner, id); err != nil {
			return bookError(err, "error deleting book")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug(ctx, "book deleted", "user_id", owner, "book_id", id)

	return nil
}

func requireTitleAuthor(in models.BookInput) (string, string, error) {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	if title == "" || author == "" {
		return "", "", errTitleAuthorRequired
	}
	return title, author, nil
}

// coverURL returns the trimmed value when it is an absolute http(s) URL with a host.
func coverURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return raw, true
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func bookError(err error, op string) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrBookNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
