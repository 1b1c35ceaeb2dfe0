package client

import (
	"fmt"

	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role"`
}

// ParseSession reads the claims of an access token without verifying its
// signature. The result only drives what the CLI offers; the gateway
// verifies the token on every call.
func ParseSession(token string) (*models.Session, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	s := &models.Session{
		UserName:    claims.Subject,
		UserID:      claims.UserID,
		Role:        claims.Role,
		AccessToken: token,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
