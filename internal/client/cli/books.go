package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/booklib/internal/client/api"
)

const maxCoverBytes = 5 << 20

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

func (a *App) List(ctx context.Context) error {
	books, err := a.backend.ListBooks(ctx)
	switch {
	case err == nil:
		a.rememberAll(ctx, books)
	case a.offline(err):
		cached, cacheErr := a.cache.ListBooks(ctx, a.userID)
		if cacheErr != nil {
			return err
		}
		a.printf("Server unreachable (%v), showing cached library\n", err)
		books = cached
	default:
		return err
	}

	if len(books) == 0 {
		a.printf("Your library is empty. Use 'add' to add a book.\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tADDED")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.bookID(args)
	if err != nil {
		return err
	}

	b, err := a.backend.GetBook(ctx, id)
	switch {
	case err == nil:
		a.remember(ctx, b)
	case a.offline(err):
		cached, cacheErr := a.cache.GetBook(ctx, a.userID, id)
		if cacheErr != nil {
			return err
		}
		a.printf("Server unreachable (%v), showing cached copy\n", err)
		b = cached
	default:
		if api.StatusOf(err) == http.StatusNotFound {
			a.forget(ctx, id)
		}
		return err
	}

	a.printBook(b)
	return nil
}

func (a *App) Add(ctx context.Context) error {
	var in api.BookInput
	var err error

	if in.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if in.Author, err = GetSimpleText(a.reader, "Author", a.out); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	cover, err := GetSimpleText(a.reader, "Cover image URL (empty for the default cover)", a.out)
	if err != nil {
		return err
	}
	if cover != "" {
		in.CoverImage = &cover
	}

	b, err := a.backend.CreateBook(ctx, in)
	if err != nil {
		return err
	}
	a.remember(ctx, b)

	a.printf("Book created: %s\n", b.ID)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.bookID(args)
	if err != nil {
		return err
	}

	current, err := a.backend.GetBook(ctx, id)
	if err != nil {
		return err
	}

	in := api.BookInput{}
	if in.Title, err = GetTextOrKeep(a.reader, "Title", current.Title, a.out); err != nil {
		return err
	}
	if in.Author, err = GetTextOrKeep(a.reader, "Author", current.Author, a.out); err != nil {
		return err
	}
	if in.Description, err = GetTextOrKeep(a.reader, "Description", current.Description, a.out); err != nil {
		return err
	}
	cover, err := GetSimpleText(a.reader, "Cover image URL (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	if cover != "" {
		in.CoverImage = &cover
	}

	updated, err := a.backend.UpdateBook(ctx, id, in)
	if err != nil {
		return err
	}
	a.remember(ctx, updated)

	a.printf("Book updated\n")
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.bookID(args)
	if err != nil {
		return err
	}

	b, err := a.backend.GetBook(ctx, id)
	if err != nil {
		return err
	}

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete %q by %s? (y/N)", b.Title, b.Author), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.printf("Cancelled\n")
		return nil
	}

	if err := a.backend.DeleteBook(ctx, id); err != nil {
		return err
	}
	a.forget(ctx, id)

	a.printf("Book deleted\n")
	return nil
}

// Cover uploads a local image through a presigned URL and points the book
// at the uploaded object.
func (a *App) Cover(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: cover <id> <image file>")
	}
	id, path := args[0], args[1]

	data, err := readFile(path)
	if err != nil {
		return err
	}
	if len(data) > maxCoverBytes {
		return fmt.Errorf("cover is larger than %d MB", maxCoverBytes>>20)
	}

	b, err := a.backend.GetBook(ctx, id)
	if err != nil {
		return err
	}

	contentType := http.DetectContentType(data)
	upload, err := a.backend.PresignCover(ctx, contentType)
	if err != nil {
		return err
	}

	if err := a.backend.UploadCover(ctx, upload, contentType, bytes.NewReader(data)); err != nil {
		return err
	}

	in := api.BookInput{Title: b.Title, Author: b.Author, Description: b.Description, CoverImage: &upload.CoverURL}
	updated, err := a.backend.UpdateBook(ctx, id, in)
	if err != nil {
		return err
	}
	a.remember(ctx, updated)

	a.printf("Cover uploaded: %s\n", upload.CoverURL)
	return nil
}

func (a *App) bookID(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := GetSimpleText(a.reader, "Book ID", a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("book id is required")
	}
	return id, nil
}

func (a *App) printBook(b *api.Book) {
	a.printf("ID:          %s\n", b.ID)
	a.printf("Title:       %s\n", b.Title)
	a.printf("Author:      %s\n", b.Author)
	a.printf("Cover:       %s\n", b.CoverImage)
	a.printf("Added:       %s\n", b.CreatedAt.Format("2006-01-02 15:04"))
	a.printf("Updated:     %s\n", b.UpdatedAt.Format("2006-01-02 15:04"))
	if b.Description != "" {
		a.printf("\n%s\n", b.Description)
	}
}
