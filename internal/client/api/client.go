// Package api is a thin client for the booklib REST API. It holds the bearer
// token in memory only.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/netx"
)

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a Client for the server at baseURL ("http://host:port").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) LoggedIn() bool {
	return c.Token() != ""
}

// Logout forgets the token. Tokens are stateless, so the server is not told.
func (c *Client) Logout() {
	c.SetToken("")
}

type messageResponse struct {
	Message string `json:"message"`
}

type authResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

type userResponse struct {
	User User `json:"user"`
}

type booksResponse struct {
	Books []Book `json:"books"`
}

type bookResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

type coverResponse struct {
	Upload CoverUpload `json:"upload"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health returns the server's liveness message.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", false, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Signup registers an account and keeps the returned token.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*User, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", false, in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out.User, nil
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	in := map[string]string{"email": email, "password": password}

	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", false, in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out.User, nil
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", true, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var out booksResponse
	if err := c.do(ctx, http.MethodGet, "/api/books", true, nil, &out); err != nil {
		return nil, err
	}
	if out.Books == nil {
		out.Books = []Book{}
	}
	return out.Books, nil
}

func (c *Client) GetBook(ctx context.Context, id string) (*Book, error) {
	var out bookResponse
	if err := c.do(ctx, http.MethodGet, bookPath(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out.Book, nil
}

func (c *Client) CreateBook(ctx context.Context, in BookInput) (*Book, error) {
	var out bookResponse
	if err := c.do(ctx, http.MethodPost, "/api/books", true, in, &out); err != nil {
		return nil, err
	}
	return &out.Book, nil
}

func (c *Client) UpdateBook(ctx context.Context, id string, in BookInput) (*Book, error) {
	var out bookResponse
	if err := c.do(ctx, http.MethodPut, bookPath(id), true, in, &out); err != nil {
		return nil, err
	}
	return &out.Book, nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, bookPath(id), true, nil, nil)
}

// PresignCover asks the server for a cover upload URL for contentType.
func (c *Client) PresignCover(ctx context.Context, contentType string) (*CoverUpload, error) {
	in := map[string]string{"content_type": contentType}

	var out coverResponse
	if err := c.do(ctx, http.MethodPost, "/api/books/covers", true, in, &out); err != nil {
		return nil, err
	}
	return &out.Upload, nil
}

// UploadCover PUTs body to a presigned upload URL.
func (c *Client) UploadCover(ctx context.Context, upload *CoverUpload, contentType string, body io.Reader) error {
	return netx.UploadToPresignedURL(ctx, c.http, upload.UploadURL, contentType, body)
}

func bookPath(id string) string {
	return "/api/books/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	e := &Error{Status: resp.StatusCode}

	var er errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&er); err == nil && er.Error != "" {
		e.Message = er.Error
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
