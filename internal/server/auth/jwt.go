// Package auth mints and verifies session tokens and carries the
// authenticated principal through a request context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// AuthorityFederated marks sessions opened through an identity provider.
const AuthorityFederated = "OAUTH2_USER"

// Claims is the session token payload. Subject holds the account ID.
type Claims struct {
	jwt.RegisteredClaims
	Authorities []string `json:"authorities"`
	Username    string   `json:"username,omitempty"`
}

// SessionTokenIssuer signs HS256 session tokens with a process-wide key.
// It is safe for concurrent use.
type SessionTokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionTokenIssuer fails with common.ErrConfiguration when the key is
// empty or the ttl is not positive.
func NewSessionTokenIssuer(secretKey string, ttl time.Duration) (*SessionTokenIssuer, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("%w: session signing key is empty", common.ErrConfiguration)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: session token ttl must be positive", common.ErrConfiguration)
	}
	return &SessionTokenIssuer{key: []byte(secretKey), ttl: ttl, now: time.Now}, nil
}

// Issue returns a token for account whose authorities are the account role
// followed by extra.
func (s *SessionTokenIssuer) Issue(account *models.Account, extra ...string) (string, error) {
	if account == nil || account.ID == "" {
		return "", fmt.Errorf("%w: account without id", common.ErrorValidation)
	}

	now := s.now()
	authorities := make([]string, 0, len(extra)+1)
	authorities = append(authorities, string(account.Role.Name))
	authorities = append(authorities, extra...)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Authorities: authorities,
		Username:    account.UserName,
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: sign session token: %v", common.ErrConfiguration, err)
	}
	return signed, nil
}

// Parse verifies signature and expiry. Expired tokens yield
// common.ErrTokenExpired, everything else common.ErrInvalidToken.
func (s *SessionTokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
