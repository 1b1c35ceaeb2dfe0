package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/cryptox"
	"github.com/dmitrijs2005/meshmart/internal/server/auth"
	"github.com/dmitrijs2005/meshmart/internal/server/config"
	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/repomanager"
)

const (
	maxUserNameLen = 64
	minPasswordLen = 6
)

// UserService provides authentication-related operations:
// - Register: create users, granting the admin role to configured names
// - Login: verify credentials and mint an access token
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	isAdmin                     func(string) bool
	hashParams                  cryptox.Params

	// dummyHash is verified against when the user does not exist so that
	// unknown and known names take about the same time.
	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		isAdmin:                     cfg.IsAdmin,
		hashParams:                  cryptox.DefaultParams,
	}
}

// Register creates a new customer account, or an admin account when
// username is listed in the configuration.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUserNameLen {
		return nil, fmt.Errorf("%w: user name must be 1 to %d characters", common.ErrValidation, maxUserNameLen)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}

	hash, err := cryptox.HashPassword(password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := common.RoleCustomer
	if s.isAdmin(username) {
		role = common.RoleAdmin
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{UserName: username, PasswordHash: hash, Role: role})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: user %s", common.ErrAlreadyExists, username)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the password and returns a signed access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.burnVerify(password)
			return "", common.ErrInvalidLoginPassword
		}
		return "", common.ErrInternal
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", common.ErrInternal
	}
	if !ok {
		return "", common.ErrInvalidLoginPassword
	}

	token, err := auth.GenerateToken(user.ID, user.UserName, user.Role, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

func (s *UserService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = cryptox.HashPassword("meshmart", s.hashParams)
	})
	if s.dummyHash != "" {
		_, _ = cryptox.VerifyPassword(password, s.dummyHash)
	}
}
