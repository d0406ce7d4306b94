package cli

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/booklib/internal/client/api"
)

func TestList(t *testing.T) {
	f := newFakeBackend()
	a, out := newTestApp(f)

	require.NoError(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "TITLE")
	assert.Contains(t, out.String(), "Dune")

	f.books = map[string]api.Book{}
	out.Reset()
	require.NoError(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "library is empty")
}

func TestShow(t *testing.T) {
	f := newFakeBackend()
	a, out := newTestApp(f, "b1")

	require.NoError(t, a.Show(context.Background(), nil))
	assert.Contains(t, out.String(), "Title:       Dune")
	assert.Contains(t, out.String(), "Spice")

	err := a.Show(context.Background(), []string{"missing"})
	assert.Equal(t, "Book not found", describe(err))
}

func TestAdd(t *testing.T) {
	f := newFakeBackend()
	a, out := newTestApp(f, "Dune", "Herbert", "Desert planet.", "Second line.", "", "")

	require.NoError(t, a.Add(context.Background()))

	require.NotNil(t, f.created)
	assert.Equal(t, "Dune", f.created.Title)
	assert.Equal(t, "Herbert", f.created.Author)
	assert.Equal(t, "Desert planet.\nSecond line.", f.created.Description)
	assert.Nil(t, f.created.CoverImage, "empty answer leaves the cover to the server default")
	assert.Contains(t, out.String(), "Book created: b2")
}

func TestAdd_WithCover(t *testing.T) {
	f := newFakeBackend()
	a, _ := newTestApp(f, "Dune", "Herbert", "", "https://img/dune.jpg")

	require.NoError(t, a.Add(context.Background()))

	require.NotNil(t, f.created.CoverImage)
	assert.Equal(t, "https://img/dune.jpg", *f.created.CoverImage)
	assert.Empty(t, f.created.Description)
}

func TestEdit_KeepsEmptyAnswers(t *testing.T) {
	f := newFakeBackend()
	a, _ := newTestApp(f, "Dune Messiah", "", "", "")

	require.NoError(t, a.Edit(context.Background(), []string{"b1"}))

	assert.Equal(t, "b1", f.updatedID)
	assert.Equal(t, api.BookInput{Title: "Dune Messiah", Author: "Herbert", Description: "Spice"}, *f.updated)
}

func TestEdit_NotFound(t *testing.T) {
	f := newFakeBackend()
	a, _ := newTestApp(f)

	err := a.Edit(context.Background(), []string{"nope"})
	assert.Equal(t, 404, api.StatusOf(err))
	assert.Nil(t, f.updated)
}

func TestDelete(t *testing.T) {
	f := newFakeBackend()

	a, out := newTestApp(f, "n")
	require.NoError(t, a.Delete(context.Background(), []string{"b1"}))
	assert.Empty(t, f.deleted)
	assert.Contains(t, out.String(), "Cancelled")

	a, out = newTestApp(f, "y")
	require.NoError(t, a.Delete(context.Background(), []string{"b1"}))
	assert.Equal(t, []string{"b1"}, f.deleted)
	assert.Contains(t, out.String(), "Book deleted")
}

func TestCover(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n rest of image")
	orig := readFile
	readFile = func(name string) ([]byte, error) {
		if name == "dune.png" {
			return png, nil
		}
		return nil, os.ErrNotExist
	}
	t.Cleanup(func() { readFile = orig })

	f := newFakeBackend()
	a, out := newTestApp(f)

	require.NoError(t, a.Cover(context.Background(), []string{"b1", "dune.png"}))

	assert.Equal(t, "image/png", f.presignCT)
	assert.Equal(t, "image/png", f.uploadCT)
	assert.Equal(t, string(png), f.uploadBody)
	require.NotNil(t, f.updated.CoverImage)
	assert.Equal(t, "http://s3/covers/u1/k", *f.updated.CoverImage)
	assert.Equal(t, "Dune", f.updated.Title)
	assert.Equal(t, "Spice", f.updated.Description)
	assert.Contains(t, out.String(), "Cover uploaded")

	assert.ErrorIs(t, a.Cover(context.Background(), []string{"b1", "missing.png"}), os.ErrNotExist)
	assert.Error(t, a.Cover(context.Background(), []string{"b1"}))
}

func TestCover_RejectedType(t *testing.T) {
	orig := readFile
	readFile = func(string) ([]byte, error) { return []byte("plain text, not an image"), nil }
	t.Cleanup(func() { readFile = orig })

	f := newFakeBackend()
	a, _ := newTestApp(f)

	err := a.Cover(context.Background(), []string{"b1", "notes.txt"})
	assert.Equal(t, 400, api.StatusOf(err))
	assert.Empty(t, f.uploadBody)
	assert.Nil(t, f.updated)
}

func TestBackendErrorsPropagate(t *testing.T) {
	f := newFakeBackend()
	f.err = errBoom
	a, _ := newTestApp(f)

	assert.True(t, errors.Is(a.List(context.Background()), errBoom))
	assert.True(t, errors.Is(a.Profile(context.Background()), errBoom))
}

func TestPrintBook_OmitsEmptyDescription(t *testing.T) {
	a, out := newTestApp(newFakeBackend())
	a.printBook(&api.Book{ID: "b9", Title: "T", Author: "A", CreatedAt: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)})

	assert.Contains(t, out.String(), "Added:       2024-01-02 03:04")
	assert.NotContains(t, out.String(), "\n\n")
}
