package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/dbx"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/books"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memUsers is an in-memory users.Repository that enforces the same unique
// constraints as the database.
type memUsers struct {
	mu    sync.Mutex
	users []*models.User
	calls int

	findErr   error
	createErr error
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, common.ErrEmailExists
		}
		if existing.UserName == u.UserName {
			return nil, common.ErrUsernameExists
		}
	}
	stored := *u
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	m.users = append(m.users, &stored)
	out := stored
	return &out, nil
}

func (m *memUsers) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	var byName *models.User
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
		if u.UserName == username && byName == nil {
			byName = u
		}
	}
	if byName != nil {
		out := *byName
		return &out, nil
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return
		}
	}
}

// memBooks is an in-memory books.Repository; every method filters by owner.
type memBooks struct {
	mu    sync.Mutex
	books map[string]*models.Book
	clock time.Time

	err error
}

func newMemBooks() *memBooks {
	return &memBooks{
		books: map[string]*models.Book{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memBooks) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memBooks) ListByOwner(ctx context.Context, owner string) ([]*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Book
	for _, b := range m.books {
		if b.UserID == owner {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memBooks) GetByOwner(ctx context.Context, owner, id string) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.books[id]
	if !ok || b.UserID != owner {
		return nil, common.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *memBooks) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	b.ID = uuid.NewString()
	b.CreatedAt = m.tick()
	b.UpdatedAt = b.CreatedAt
	c := *b
	m.books[b.ID] = &c
	return b, nil
}

func (m *memBooks) UpdateByOwner(ctx context.Context, b *models.Book) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	stored, ok := m.books[b.ID]
	if !ok || stored.UserID != b.UserID {
		return nil, common.ErrNotFound
	}
	b.CreatedAt = stored.CreatedAt
	b.UpdatedAt = m.tick()
	c := *b
	m.books[b.ID] = &c
	return b, nil
}

func (m *memBooks) DeleteByOwner(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	b, ok := m.books[id]
	if !ok || b.UserID != owner {
		return common.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

type fakeRepoManager struct {
	u *memUsers
	b *memBooks
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: &memUsers{}, b: newMemBooks()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Books(db dbx.DBTX) books.Repository           { return m.b }
