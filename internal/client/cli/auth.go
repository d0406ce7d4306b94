package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/booklib/internal/client/api"
)

// getPassword is swapped in tests to avoid touching the terminal.
var getPassword = GetPassword

func (a *App) Signup(ctx context.Context) error {
	var in api.SignupRequest
	var err error

	if in.FullName, err = GetSimpleText(a.reader, "Enter full name", a.out); err != nil {
		return err
	}
	if in.UserName, err = GetSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}
	if in.Email, err = GetSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if in.Password, err = getPassword(a.out); err != nil {
		return err
	}

	user, err := a.backend.Signup(ctx, in)
	if err != nil {
		return err
	}

	a.userID, a.userName = user.ID, user.UserName
	a.printf("Account created, logged in as %s\n", user.UserName)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.userID, a.userName = user.ID, user.UserName
	a.printf("Login successful, welcome %s\n", user.FullName)
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	user, err := a.backend.Profile(ctx)
	if err != nil {
		return err
	}

	a.printf("ID:       %s\nName:     %s\nUsername: %s\nEmail:    %s\nSince:    %s\n",
		user.ID, user.FullName, user.UserName, user.Email, user.CreatedAt.Format("2006-01-02"))
	return nil
}

// Logout forgets the session locally. Cached books stay on disk for the next
// login of the same user.
func (a *App) Logout(ctx context.Context) error {
	if !a.backend.LoggedIn() {
		return errors.New("not logged in")
	}
	a.backend.Logout()
	a.userID, a.userName = "", ""
	a.printf("Logged out\n")
	return nil
}
