// Package services contains application services for the MeshMart CLI.
// This file defines the authentication service: login against the gateway,
// keeping the access token between runs, and logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/client/client"
	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/dmitrijs2005/meshmart/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/meshmart/internal/dbx"
)

const (
	keyUsername = "username"
	keyToken    = "access_token"
)

var ErrSessionExpired = errors.New("session expired, please log in again")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the gateway and persist the token.
//   - Restore: reload a persisted, unexpired token at startup.
//   - Logout: forget the token locally.
//   - Session: the current session, nil when logged out.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Register(ctx context.Context, username, password string) error
	Restore(ctx context.Context) (*models.Session, error)
	Logout(ctx context.Context) error
	Session() *models.Session
	Ping(ctx context.Context) error
}

type authService struct {
	client  client.Client
	db      *sql.DB
	now     func() time.Time
	session *models.Session
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db, now: time.Now}
}

func (a *authService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	s, err := client.ParseSession(token)
	if err != nil {
		return nil, err
	}
	if s.UserName == "" {
		s.UserName = username
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyUsername, []byte(s.UserName)); err != nil {
			return err
		}
		return repo.Set(ctx, keyToken, []byte(token))
	})
	if err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	a.client.SetToken(token)
	s.SignedInAt = a.now()
	a.session = s
	return s, nil
}

func (a *authService) Register(ctx context.Context, username, password string) error {
	return a.client.Register(ctx, username, password)
}

// Restore loads the persisted token. It returns client.ErrNotLoggedIn when
// there is none and ErrSessionExpired, after clearing it, when it is too old.
func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, client.ErrNotLoggedIn
	}

	s, err := client.ParseSession(string(token))
	if err != nil || s.Expired(a.now()) {
		if cerr := repo.Clear(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, ErrSessionExpired
	}

	if s.UserName == "" {
		name, err := repo.Get(ctx, keyUsername)
		if err != nil {
			return nil, err
		}
		s.UserName = string(name)
	}

	s.SignedInAt, err = repo.UpdatedAt(ctx, keyToken)
	if err != nil {
		return nil, err
	}

	a.client.SetToken(s.AccessToken)
	a.session = s
	return s, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetToken("")
	a.session = nil
	return metadata.NewSQLiteRepository(a.db).Clear(ctx)
}

// Session returns the current session, or nil once it has expired.
func (a *authService) Session() *models.Session {
	if a.session.Expired(a.now()) {
		return nil
	}
	return a.session
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
