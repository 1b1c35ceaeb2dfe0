package models

import (
	"time"

	"github.com/dmitrijs2005/meshmart/internal/common"
)

// Session is what the CLI knows about the logged-in user. It is read from the
// access token's claims and is only used to decide what to offer; the gateway
// enforces every decision again.
type Session struct {
	UserName    string
	UserID      string
	Role        string
	ExpiresAt   time.Time
	AccessToken string
	// SignedInAt is when the token was stored locally.
	SignedInAt  time.Time
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == common.RoleAdmin
}

// Expired reports whether the token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}
