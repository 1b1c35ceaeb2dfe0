package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/client/client"
	"github.com/dmitrijs2005/meshmart/internal/client/services"
	"github.com/dustin/go-humanize"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a user name and password and creates an account.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, userName, password); err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		return err
	}

	fmt.Fprintln(a.out, "Success! You can log in now.")
	return nil
}

// Login prompts for credentials and stores the resulting session locally.
// An unreachable gateway switches the prompt to offline mode.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	s, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ctx, ModeOffline)
		}
		fmt.Fprintln(a.out, "Login unsuccessful:", err)
		return err
	}

	a.setMode(ctx, ModeOnline)
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", s.UserName, s.Role)
	return nil
}

// Restore picks up the session saved by a previous run, if it is still valid.
func (a *App) Restore(ctx context.Context) {
	s, err := a.authService.Restore(ctx)
	switch {
	case err == nil:
		if s.SignedInAt.IsZero() {
			fmt.Fprintf(a.out, "Welcome back, %s\n", s.UserName)
			return
		}
		fmt.Fprintf(a.out, "Welcome back, %s (signed in %s)\n", s.UserName, humanize.Time(s.SignedInAt))
	case errors.Is(err, services.ErrSessionExpired):
		fmt.Fprintln(a.out, err)
	case errors.Is(err, client.ErrNotLoggedIn):
	default:
		a.log.Warn(ctx, "restoring session", "error", err)
	}
}

func (a *App) Logout(ctx context.Context) error {
	a.closeProduct()
	a.lastResult = nil

	if err := a.authService.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.authService.Session()
	if s == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (role %s, id %s), session valid until %s\n",
		s.UserName, s.Role, s.UserID, s.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

// sessionLost reacts to the gateway rejecting the stored token.
func (a *App) sessionLost(ctx context.Context, err error) bool {
	if !client.IsAuthError(err) {
		return false
	}
	_ = a.authService.Logout(ctx)
	fmt.Fprintln(a.out, "Your session is no longer valid, please log in again")
	return true
}
