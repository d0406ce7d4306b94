package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/services"
)

const (
	adaID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	bobID = "16fd2706-8baf-433b-82eb-8c7fada847da"
)

var testTokens = auth.NewTokenService([]byte("test-secret"), time.Hour)

type stubAccounts struct {
	signup  func(in services.SignupInput) (*services.AuthResult, error)
	login   func(email, password string) (*services.AuthResult, error)
	users   map[string]*models.User
	findErr error
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{users: map[string]*models.User{
		adaID: {ID: adaID, FullName: "Ada", UserName: "ada", Email: "ada@x.com", PasswordHash: "$2a$hash"},
		bobID: {ID: bobID, FullName: "Bob", UserName: "bob", Email: "bob@x.com", PasswordHash: "$2a$hash"},
	}}
}

func (s *stubAccounts) Signup(ctx context.Context, in services.SignupInput) (*services.AuthResult, error) {
	return s.signup(in)
}

func (s *stubAccounts) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	return s.login(email, password)
}

func (s *stubAccounts) GetProfile(ctx context.Context, userID string) (*models.PublicUser, error) {
	u, err := s.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := u.Public()
	return &p, nil
}

func (s *stubAccounts) FindUser(ctx context.Context, userID string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return u, nil
}

type stubBooks struct {
	list   func(owner string) ([]*models.Book, error)
	get    func(owner, id string) (*models.Book, error)
	create func(owner string, in models.BookInput) (*models.Book, error)
	update func(owner, id string, in models.BookInput) (*models.Book, error)
	del    func(owner, id string) error
}

func (s *stubBooks) List(ctx context.Context, owner string) ([]*models.Book, error) {
	return s.list(owner)
}

func (s *stubBooks) Get(ctx context.Context, owner, id string) (*models.Book, error) {
	return s.get(owner, id)
}

func (s *stubBooks) Create(ctx context.Context, owner string, in models.BookInput) (*models.Book, error) {
	return s.create(owner, in)
}

func (s *stubBooks) Update(ctx context.Context, owner, id string, in models.BookInput) (*models.Book, error) {
	return s.update(owner, id, in)
}

func (s *stubBooks) Delete(ctx context.Context, owner, id string) error {
	return s.del(owner, id)
}

type stubCovers struct {
	presign func(owner, contentType string) (*services.CoverUpload, error)
}

func (s *stubCovers) PresignUpload(ctx context.Context, owner, contentType string) (*services.CoverUpload, error) {
	return s.presign(owner, contentType)
}

func testOptions() Options {
	return Options{
		Address:     "127.0.0.1:0",
		CORSOrigins: []string{"http://localhost:5173"},
	}
}

func newTestServer(t *testing.T, accounts *stubAccounts, books *stubBooks, covers *stubCovers) *Server {
	t.Helper()
	if accounts == nil {
		accounts = newStubAccounts()
	}
	if books == nil {
		books = &stubBooks{}
	}
	if covers == nil {
		covers = &stubCovers{}
	}
	return NewServer(testOptions(), logging.NewNop(), testTokens, accounts, books, covers)
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := testTokens.Issue(userID)
	require.NoError(t, err)
	return tok
}

func doRequest(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
