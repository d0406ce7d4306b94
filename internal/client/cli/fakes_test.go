package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/client/api"
	"github.com/dmitrijs2005/booklib/internal/client/config"
)

type fakeBackend struct {
	loggedIn bool
	err      error

	signupIn  api.SignupRequest
	loginPass string

	books     map[string]api.Book
	created   *api.BookInput
	updatedID string
	updated   *api.BookInput
	deleted   []string

	presignCT  string
	uploadCT   string
	uploadBody string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{books: map[string]api.Book{
		"b1": {ID: "b1", Title: "Dune", Author: "Herbert", Description: "Spice", CoverImage: "http://old"},
	}}
}

var ada = &api.User{ID: "u1", FullName: "Ada Lovelace", UserName: "ada", Email: "ada@x.com"}

func (f *fakeBackend) Health(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Server is running!", nil
}

func (f *fakeBackend) Signup(_ context.Context, in api.SignupRequest) (*api.User, error) {
	f.signupIn = in
	if f.err != nil {
		return nil, f.err
	}
	f.loggedIn = true
	return &api.User{ID: "u2", FullName: in.FullName, UserName: in.UserName, Email: in.Email}, nil
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*api.User, error) {
	f.loginPass = password
	if f.err != nil {
		return nil, f.err
	}
	f.loggedIn = true
	return ada, nil
}

func (f *fakeBackend) Profile(context.Context) (*api.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return ada, nil
}

func (f *fakeBackend) LoggedIn() bool { return f.loggedIn }
func (f *fakeBackend) Logout()        { f.loggedIn = false }

func (f *fakeBackend) ListBooks(context.Context) ([]api.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]api.Book, 0, len(f.books))
	for _, b := range f.books {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBackend) GetBook(_ context.Context, id string) (*api.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.books[id]
	if !ok {
		return nil, &api.Error{Status: 404, Message: "Book not found"}
	}
	return &b, nil
}

func (f *fakeBackend) CreateBook(_ context.Context, in api.BookInput) (*api.Book, error) {
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	return &api.Book{ID: "b2", Title: in.Title, Author: in.Author}, nil
}

func (f *fakeBackend) UpdateBook(_ context.Context, id string, in api.BookInput) (*api.Book, error) {
	f.updatedID, f.updated = id, &in
	if f.err != nil {
		return nil, f.err
	}
	return &api.Book{ID: id, Title: in.Title}, nil
}

func (f *fakeBackend) DeleteBook(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) PresignCover(_ context.Context, contentType string) (*api.CoverUpload, error) {
	f.presignCT = contentType
	if contentType != "image/png" {
		return nil, &api.Error{Status: 400, Message: "Cover must be a JPEG, PNG, WebP or GIF image"}
	}
	return &api.CoverUpload{Key: "covers/u1/k", UploadURL: "http://s3/put", CoverURL: "http://s3/covers/u1/k"}, nil
}

func (f *fakeBackend) UploadCover(_ context.Context, _ *api.CoverUpload, contentType string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.uploadCT, f.uploadBody = contentType, string(b)
	return nil
}

var errBoom = errors.New("boom")

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func newTestApp(b Backend, lines ...string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	c := &config.Config{}
	c.LoadDefaults()
	return &App{config: c, backend: b, reader: readerFromLines(lines...), out: out}, out
}

func stubPassword(pw string) func() {
	orig := getPassword
	getPassword = func(io.Writer) (string, error) { return pw, nil }
	return func() { getPassword = orig }
}
