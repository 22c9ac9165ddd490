// Package services contains server-side business logic. UserService handles
// registration, profile reads and updates, login and token refresh;
// FriendService handles friendships and distance queries.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/logging"
	"github.com/dmitrijs2005/netwerker/internal/server/auth"
	"github.com/dmitrijs2005/netwerker/internal/server/blacklist"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
	"github.com/google/uuid"
)

// Password length bounds, in characters. The encoded password is also
// capped at auth.MaxPasswordBytes.
const (
	MinPasswordLength = 3
	MaxPasswordLength = 50
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
}

// LoginResult is what a successful password login yields.
type LoginResult struct {
	User   *models.User
	Org    string
	Tokens TokenPair
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Org      string
	Roles    []string
}

type UserService struct {
	users     users.Repository
	blacklist *blacklist.Blacklist
	issuer    *auth.TokenIssuer
	password  *auth.PasswordAuthenticator
	tokens    *auth.TokenAuthenticator
	hashCost  int
	logger    logging.Logger
}

// NewUserService wires the user store with the authenticators. bl may be
// nil, in which case only the email shape is validated.
func NewUserService(repo users.Repository, bl *blacklist.Blacklist, issuer *auth.TokenIssuer,
	password *auth.PasswordAuthenticator, tokens *auth.TokenAuthenticator, logger logging.Logger) *UserService {
	return &UserService{
		users:     repo,
		blacklist: bl,
		issuer:    issuer,
		password:  password,
		tokens:    tokens,
		logger:    logger.With("module", "user_service"),
	}
}

// SetHashCost overrides the bcrypt cost used for new passwords.
func (s *UserService) SetHashCost(cost int) { s.hashCost = cost }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. The email is lower-cased and checked against the
// blacklist; a taken email yields common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	email := normalizeEmail(req.Email)
	if err := s.blacklist.Check(email); err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(req.Password); n < MinPasswordLength || n > MaxPasswordLength {
		return nil, fmt.Errorf("%w: password must be %d to %d characters long",
			common.ErrValidation, MinPasswordLength, MaxPasswordLength)
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must not exceed %d bytes", common.ErrValidation, auth.MaxPasswordBytes)
	}

	_, err := s.users.Find(ctx, users.ByEmail(email))
	switch {
	case err == nil:
		return nil, common.ErrAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.StoreError(err)
	}

	hash, err := auth.HashPassword(req.Password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	u, err := s.users.Create(ctx, &models.User{
		UUID:          uuid.NewString(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Roles:         req.Roles,
		Org:           req.Org,
		EmailVerified: true,
	})
	if err != nil {
		return nil, common.StoreError(err)
	}

	s.logger.Info(ctx, "user registered", "uuid", u.UUID)
	return u.Stripped(), nil
}

func (s *UserService) Get(ctx context.Context, uuid string) (*models.User, error) {
	u, err := s.users.Find(ctx, users.ByUUID(uuid))
	if err != nil {
		return nil, common.StoreError(err)
	}
	return u.Stripped(), nil
}

// List returns every user without secrets or friend lists.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, common.StoreError(err)
	}
	result := make([]*models.User, 0, len(all))
	for _, u := range all {
		result = append(result, u.Public())
	}
	return result, nil
}

// PatchEmail changes the email of the user identified by uuid.
func (s *UserService) PatchEmail(ctx context.Context, uuid, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := s.blacklist.Check(email); err != nil {
		return nil, err
	}

	u, err := s.users.Find(ctx, users.ByUUID(uuid))
	if err != nil {
		return nil, common.StoreError(err)
	}
	if u.Email == email {
		return u.Stripped(), nil
	}
	if err := s.users.Update(ctx, u.ID, users.Patch{Email: &email}); err != nil {
		return nil, common.StoreError(err)
	}

	u.Email = email
	return u.Stripped(), nil
}

// Login authenticates Basic credentials from header and mints a token pair.
func (s *UserService) Login(ctx context.Context, header string) (*LoginResult, error) {
	u, org, err := s.password.Authenticate(ctx, header)
	if err != nil {
		return nil, err
	}

	access, exp, err := s.issuer.Issue(u, org, common.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	refresh, _, err := s.issuer.Issue(u, org, common.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return &LoginResult{User: u, Org: org, Tokens: TokenPair{AccessToken: access, RefreshToken: refresh, AccessExpires: exp}}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself is returned unchanged.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	access, exp, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken, AccessExpires: exp}, nil
}
