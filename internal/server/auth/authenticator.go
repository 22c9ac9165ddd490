package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/logging"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
)

// Authentication methods reported to an Observer.
const (
	MethodPassword = "password"
	MethodToken    = "token"
	MethodRefresh  = "refresh"
)

// Authentication outcomes reported to an Observer.
const (
	OutcomeSuccess        = "success"
	OutcomeNoCredential   = "no_credential"
	OutcomeInvalid        = "invalid"
	OutcomeExpired        = "expired"
	OutcomeUnknownSubject = "unknown_subject"
	OutcomeForbidden      = "forbidden"
	OutcomeError          = "error"
)

// Authenticator turns the raw authorization header value into the
// authenticated user (secrets stripped) and its organization.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.User, string, error)
}

// UserFinder is the part of the user store the authenticators need.
type UserFinder interface {
	Find(ctx context.Context, f users.Filter) (*models.User, error)
}

type Observer interface {
	ObserveAuth(method, outcome string)
}

// Outcome classifies an authentication error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, common.ErrNoCredential):
		return OutcomeNoCredential
	case errors.Is(err, common.ErrExpiredCredential):
		return OutcomeExpired
	case errors.Is(err, common.ErrInvalidCredential):
		return OutcomeInvalid
	case errors.Is(err, common.ErrUnknownSubject):
		return OutcomeUnknownSubject
	case errors.Is(err, common.ErrForbidden):
		return OutcomeForbidden
	}
	return OutcomeError
}

type Option func(*base)

func WithLogger(l logging.Logger) Option { return func(b *base) { b.logger = l } }

func WithObserver(o Observer) Option { return func(b *base) { b.observer = o } }

// WithScheme overrides the expected authorization scheme name.
func WithScheme(s string) Option { return func(b *base) { b.scheme = s } }

type base struct {
	users    UserFinder
	logger   logging.Logger
	observer Observer
	scheme   string
}

func newBase(u UserFinder, scheme string, opts []Option) base {
	b := base{users: u, logger: logging.Nop{}, scheme: scheme}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *base) report(ctx context.Context, method string, err error) {
	outcome := Outcome(err)
	if b.observer != nil {
		b.observer.ObserveAuth(method, outcome)
	}
	switch outcome {
	case OutcomeSuccess, OutcomeNoCredential:
	case OutcomeError:
		b.logger.Error(ctx, "authentication failed", "method", method, "error", err)
	default:
		b.logger.Info(ctx, "authentication rejected", "method", method, "outcome", outcome)
	}
}

// PasswordAuthenticator checks an email and password against the stored
// bcrypt hash.
type PasswordAuthenticator struct {
	base
	requiredRoles []string
}

// NewPasswordAuthenticator returns a password authenticator. When
// requiredRoles is not empty the user must hold at least one of them.
func NewPasswordAuthenticator(u UserFinder, requiredRoles []string, opts ...Option) *PasswordAuthenticator {
	return &PasswordAuthenticator{base: newBase(u, common.BasicScheme, opts), requiredRoles: requiredRoles}
}

// Authenticate reads Basic credentials from header.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, header string) (*models.User, string, error) {
	cred, ok := ParseAuthorization(header, a.scheme)
	if !ok {
		a.report(ctx, MethodPassword, common.ErrNoCredential)
		return nil, "", common.ErrNoCredential
	}
	email, password, ok := ParseBasic(cred)
	if !ok {
		a.report(ctx, MethodPassword, common.ErrInvalidCredential)
		return nil, "", common.ErrInvalidCredential
	}
	return a.AuthenticatePassword(ctx, email, password)
}

// AuthenticatePassword fails with common.ErrInvalidCredential for an unknown
// email and for a wrong password alike.
func (a *PasswordAuthenticator) AuthenticatePassword(ctx context.Context, email, password string) (user *models.User, org string, err error) {
	defer func() { a.report(ctx, MethodPassword, err) }()

	u, err := a.users.Find(ctx, users.ByEmail(normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			CheckPassword(dummyHash(), password)
			return nil, "", common.ErrInvalidCredential
		}
		return nil, "", common.StoreError(err)
	}

	if !CheckPassword(u.PasswordHash, password) {
		return nil, "", common.ErrInvalidCredential
	}
	if len(a.requiredRoles) > 0 && !u.HasAnyRole(a.requiredRoles...) {
		return nil, "", common.ErrForbidden
	}
	return u.Stripped(), u.Org, nil
}

// TokenAuthenticator verifies bearer tokens and resolves their subject.
type TokenAuthenticator struct {
	base
	issuer *TokenIssuer
}

func NewTokenAuthenticator(issuer *TokenIssuer, u UserFinder, opts ...Option) *TokenAuthenticator {
	return &TokenAuthenticator{base: newBase(u, common.BearerScheme, opts), issuer: issuer}
}

// Authenticate reads a bearer token from header. A header of any other shape
// yields common.ErrNoCredential.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, header string) (*models.User, string, error) {
	token, ok := ParseAuthorization(header, a.scheme)
	if !ok {
		a.report(ctx, MethodToken, common.ErrNoCredential)
		return nil, "", common.ErrNoCredential
	}
	return a.Verify(ctx, token)
}

// Verify checks an access token and returns its subject and organization.
func (a *TokenAuthenticator) Verify(ctx context.Context, token string) (user *models.User, org string, err error) {
	defer func() { a.report(ctx, MethodToken, err) }()
	return a.resolve(ctx, token, common.TokenTypeAccess)
}

// Refresh exchanges a refresh token for a new access token.
func (a *TokenAuthenticator) Refresh(ctx context.Context, refreshToken string) (access string, expires time.Time, err error) {
	defer func() { a.report(ctx, MethodRefresh, err) }()

	user, org, err := a.resolve(ctx, refreshToken, common.TokenTypeRefresh)
	if err != nil {
		return "", time.Time{}, err
	}
	return a.issuer.Issue(user, org, common.TokenTypeAccess)
}

func (a *TokenAuthenticator) resolve(ctx context.Context, token, ttype string) (*models.User, string, error) {
	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil, "", err
	}
	if claims.Type != ttype {
		return nil, "", common.ErrInvalidCredential
	}

	u, err := a.users.Find(ctx, users.ByUUID(claims.UUID))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrUnknownSubject
		}
		return nil, "", common.StoreError(err)
	}
	return u.Stripped(), claims.Org, nil
}
