package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/client/api"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Profile(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Cover(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: signup, login, help, exit"
	helpLoggedIn  = "Available commands: profile, (l)ist, show <id>, add, edit <id>, delete <id>, cover <id> <file>, logout, help, exit"
)

// runREPL reads commands line by line from r and dispatches them to a until
// EOF or "exit"/"quit". Command errors are printed and the loop continues; a
// rejected token ends the session locally.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "booklib %s> ", statusFn())

		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}
		case "signup", "register":
			cmdErr = a.Signup(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "l", "list":
			cmdErr = a.List(ctx)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "add":
			cmdErr = a.Add(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)
		case "cover":
			cmdErr = a.Cover(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", describe(cmdErr))
			if api.StatusOf(cmdErr) == http.StatusUnauthorized && a.isLoggedIn() {
				_ = a.Logout(ctx)
			}
		}
	}
}

func describe(err error) string {
	var e *api.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
