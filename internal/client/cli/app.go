package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/booklib/internal/client/api"
	"github.com/dmitrijs2005/booklib/internal/client/cache"
	"github.com/dmitrijs2005/booklib/internal/client/config"
)

// Backend is the part of the API client the commands use.
type Backend interface {
	Health(ctx context.Context) (string, error)
	Signup(ctx context.Context, in api.SignupRequest) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.User, error)
	Profile(ctx context.Context) (*api.User, error)
	LoggedIn() bool
	Logout()

	ListBooks(ctx context.Context) ([]api.Book, error)
	GetBook(ctx context.Context, id string) (*api.Book, error)
	CreateBook(ctx context.Context, in api.BookInput) (*api.Book, error)
	UpdateBook(ctx context.Context, id string, in api.BookInput) (*api.Book, error)
	DeleteBook(ctx context.Context, id string) error
	PresignCover(ctx context.Context, contentType string) (*api.CoverUpload, error)
	UploadCover(ctx context.Context, upload *api.CoverUpload, contentType string, body io.Reader) error
}

// Cache is the local copy of the library used while the server is down.
type Cache interface {
	ReplaceBooks(ctx context.Context, owner string, books []api.Book) error
	PutBook(ctx context.Context, owner string, b *api.Book) error
	DeleteBook(ctx context.Context, owner, id string) error
	ListBooks(ctx context.Context, owner string) ([]api.Book, error)
	GetBook(ctx context.Context, owner, id string) (*api.Book, error)
	Close() error
}

type App struct {
	config   *config.Config
	backend  Backend
	cache    Cache
	userID   string
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	if c.ServerURL == "" {
		return nil, fmt.Errorf("server URL is not configured")
	}

	app := &App{
		config:  c,
		backend: api.New(c.ServerURL, c.RequestTimeout),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	if c.CacheFile != "" {
		store, err := cache.Open(context.Background(), c.CacheFile)
		if err != nil {
			log.Printf("local cache disabled: %v", err)
		} else {
			app.cache = store
		}
	}

	return app, nil
}

func (a *App) isLoggedIn() bool {
	return a.backend.LoggedIn()
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

// Run greets the user, reports whether the server answers and starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.printf("Welcome to booklib CLI (type 'help' for commands)\n")

	if msg, err := a.backend.Health(ctx); err != nil {
		a.printf("Server %s is not reachable: %v\n", a.config.ServerURL, err)
	} else {
		a.printf("%s: %s\n", a.config.ServerURL, msg)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// Close releases the local cache.
func (a *App) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}
