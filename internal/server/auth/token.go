// Package auth implements the two credential checks of the server: password
// (HTTP Basic style) and signed bearer tokens, plus token issuance.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTTL is the lifetime of an access token.
const DefaultAccessTTL = time.Hour

// Claims carried by every token.
type Claims struct {
	jwt.RegisteredClaims
	UUID string `json:"uuid"`
	Org  string `json:"org,omitempty"`
	Type string `json:"ttype"`
}

// TokenIssuer signs and parses HS256 tokens with a process-wide secret.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &TokenIssuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

func (i *TokenIssuer) ttl(ttype string) (time.Duration, error) {
	switch ttype {
	case common.TokenTypeAccess:
		return i.accessTTL, nil
	case common.TokenTypeRefresh:
		return i.refreshTTL, nil
	}
	return 0, fmt.Errorf("unknown token type %q", ttype)
}

// Issue signs a token of type ttype for user in org. It returns the token and
// its expiry.
func (i *TokenIssuer) Issue(user *models.User, org, ttype string) (string, time.Time, error) {
	ttl, err := i.ttl(ttype)
	if err != nil {
		return "", time.Time{}, err
	}

	now := i.now()
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UUID: user.UUID,
		Org:  org,
		Type: ttype,
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Parse checks signature and expiry and returns the claims. Expired tokens
// yield common.ErrExpiredCredential; anything else wrong with the token
// yields common.ErrInvalidCredential.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrExpiredCredential
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidCredential, err)
	}
	if claims.UUID == "" || claims.Type == "" {
		return nil, fmt.Errorf("%w: missing claims", common.ErrInvalidCredential)
	}
	return claims, nil
}
