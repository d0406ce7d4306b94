package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
)

// TokenIssuer mints a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// PasswordHasher hashes passwords and checks them against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// SignupInput is the registration form.
type SignupInput struct {
	FullName string `json:"fullname"`
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by signup and login: the public user and a fresh token.
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

var (
	errAllFieldsRequired     = common.NewError(common.ErrValidation, "All fields are required")
	errPasswordTooShort      = common.NewError(common.ErrValidation, fmt.Sprintf("Password must be at least %d characters", common.MinPasswordLength))
	errPasswordTooLong       = common.NewError(common.ErrValidation, fmt.Sprintf("Password must be at most %d bytes", common.MaxPasswordBytes))
	errEmailPasswordRequired = common.NewError(common.ErrValidation, "Email and password are required")
)

// AccountService registers users and authenticates them.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	hasher      PasswordHasher
	logger      logging.Logger
}

// NewAccountService wires the service to its storage, token issuer and hasher.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, hasher PasswordHasher, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		logger:      logger,
	}
}

// Signup registers a new user and logs them in. Email collisions are reported
// before username collisions.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	fullName := strings.TrimSpace(in.FullName)
	userName := strings.TrimSpace(in.UserName)
	email := strings.TrimSpace(in.Email)

	if fullName == "" || userName == "" || email == "" || in.Password == "" {
		return nil, errAllFieldsRequired
	}
	if utf8.RuneCountInString(in.Password) < common.MinPasswordLength {
		return nil, errPasswordTooShort
	}
	if len(in.Password) > common.MaxPasswordBytes {
		return nil, errPasswordTooLong
	}

	repo := s.repomanager.Users(s.db)

	existing, err := repo.FindByEmailOrUsername(ctx, email, userName)
	switch {
	case err == nil:
		if existing.Email == email {
			return nil, common.ErrEmailExists
		}
		return nil, common.ErrUsernameExists
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		FullName:     fullName,
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID)

	return s.authResult(user)
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errEmailPasswordRequired
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrBadCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error comparing password: %w", err)
	}
	if !ok {
		return nil, common.ErrBadCredentials
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)

	return s.authResult(user)
}

// GetProfile returns the public view of the user.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := user.Public()
	return &p, nil
}

// FindUser resolves a user id to the stored record; ids that are not UUIDs
// are reported as common.ErrUserNotFound.
func (s *AccountService) FindUser(ctx context.Context, userID string) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrUserNotFound
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return user, nil
}

func (s *AccountService) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}
