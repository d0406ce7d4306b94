// Package httpapi exposes the booklib services as a JSON REST API under /api.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/services"
)

// AccountService is the account API used by the handlers and the identity
// middleware.
type AccountService interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*models.PublicUser, error)
	FindUser(ctx context.Context, userID string) (*models.User, error)
}

// BookService is the owner-scoped book API used by the handlers.
type BookService interface {
	List(ctx context.Context, owner string) ([]*models.Book, error)
	Get(ctx context.Context, owner, id string) (*models.Book, error)
	Create(ctx context.Context, owner string, in models.BookInput) (*models.Book, error)
	Update(ctx context.Context, owner, id string, in models.BookInput) (*models.Book, error)
	Delete(ctx context.Context, owner, id string) error
}

// CoverPresigner hands out presigned cover upload URLs.
type CoverPresigner interface {
	PresignUpload(ctx context.Context, owner, contentType string) (*services.CoverUpload, error)
}

// Options configures the HTTP server.
type Options struct {
	Address         string
	CORSOrigins     []string
	AuthRateLimit   float64
	AuthRateBurst   int
	ShutdownTimeout time.Duration
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	echo            *echo.Echo
	logger          logging.Logger

	accounts AccountService
	books    BookService
	covers   CoverPresigner
	tokens   TokenVerifier
}

func NewServer(opts Options, l logging.Logger, tokens TokenVerifier, accounts AccountService, books BookService, covers CoverPresigner) *Server {
	s := &Server{
		address:         opts.Address,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          l.With("module", "http_server"),
		accounts:        accounts,
		books:           books,
		covers:          covers,
		tokens:          tokens,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(s.requestLogger())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.Error(c.Request().Context(), "panic recovered", "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	s.echo = e
	s.routes(opts)

	return s
}

func (s *Server) routes(opts Options) {
	api := s.echo.Group("/api")

	api.GET("/health", s.health)

	authGroup := api.Group("/auth", authRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst))
	authGroup.POST("/signup", s.signup)
	authGroup.POST("/login", s.login)
	authGroup.GET("/profile", s.profile, RequireUser(s.tokens, s.accounts))

	books := api.Group("/books", RequireUser(s.tokens, s.accounts))
	books.GET("", s.listBooks)
	books.POST("", s.createBook)
	books.POST("/covers", s.presignCover)
	books.GET("/:id", s.getBook)
	books.PUT("/:id", s.updateBook)
	books.DELETE("/:id", s.deleteBook)
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.echo.Listener = listen

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func authRateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errTooManyRequests
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return errTooManyRequests
		},
	})
}
