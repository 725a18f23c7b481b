package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wilt/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Register prompts for username, password and an optional email and creates
// the account. On success the REPL switches to the login view; the user is
// not logged in.
func (a *App) Register(ctx context.Context) error {
	a.view = ViewRegister

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", a.out)
	if err != nil {
		return err
	}

	_, err = a.authService.Register(ctx, models.Registration{Username: username, Password: password, Email: email})
	if err != nil {
		a.logger.Debug(ctx, "register failed", "error", err)
		fmt.Fprintln(a.out, registerFailure(err))
		return err
	}

	fmt.Fprintln(a.out, msgRegistered)
	a.view = ViewLogin
	return nil
}

// Login prompts for credentials, authenticates and loads the entry list.
// A 401 during that first fetch ends the session again.
func (a *App) Login(ctx context.Context) error {
	if a.view == ViewRegister {
		a.view = ViewLogin
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Login(ctx, models.Credentials{Username: username, Password: password}); err != nil {
		a.logger.Debug(ctx, "login failed", "error", err)
		fmt.Fprintln(a.out, loginFailure(err))
		return err
	}

	a.sessionExpired.Store(false)
	a.loggedIn = true
	a.userName = username
	a.view = ViewEntries
	fmt.Fprintf(a.out, "Logged in as %s\n", username)

	return a.List(ctx)
}

// Logout wipes the session store and resets the REPL state. The local state
// is reset even when the store cannot be cleared.
func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	a.resetSession()

	if err != nil {
		a.logger.Error(ctx, "logout", "error", err)
		fmt.Fprintln(a.out, "Logged out, but the local session could not be cleared")
		return err
	}

	fmt.Fprintln(a.out, "Logged out")
	return nil
}
