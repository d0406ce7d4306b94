package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/booklib/internal/client/api"
)

// offline reports whether err means the server could not be reached (as
// opposed to an answer from it) and cached data can stand in.
func (a *App) offline(err error) bool {
	if a.cache == nil || a.userID == "" {
		return false
	}
	if api.StatusOf(err) != 0 || errors.Is(err, api.ErrNotLoggedIn) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func (a *App) cacheWarn(err error) {
	if err != nil {
		a.printf("warning: local cache: %v\n", err)
	}
}

func (a *App) rememberAll(ctx context.Context, books []api.Book) {
	if a.cache != nil && a.userID != "" {
		a.cacheWarn(a.cache.ReplaceBooks(ctx, a.userID, books))
	}
}

func (a *App) remember(ctx context.Context, b *api.Book) {
	if a.cache != nil && a.userID != "" && b != nil {
		a.cacheWarn(a.cache.PutBook(ctx, a.userID, b))
	}
}

func (a *App) forget(ctx context.Context, id string) {
	if a.cache != nil && a.userID != "" {
		a.cacheWarn(a.cache.DeleteBook(ctx, a.userID, id))
	}
}
