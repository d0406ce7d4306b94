package books

import (
	"context"

	"github.com/dmitrijs2005/booklib/internal/server/models"
)

// Repository stores books. Every method is scoped by the owner's user id; a
// book that exists but belongs to someone else is reported as
// common.ErrNotFound.
type Repository interface {
	ListByOwner(ctx context.Context, owner string) ([]*models.Book, error)
	GetByOwner(ctx context.Context, owner, id string) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	UpdateByOwner(ctx context.Context, book *models.Book) (*models.Book, error)
	DeleteByOwner(ctx context.Context, owner, id string) error
}
