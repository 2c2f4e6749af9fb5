// Package auth holds the credential primitives of the server: the JWT codec
// for access and refresh tokens and the password hasher.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of both token kinds: the standard registered claims
// plus the username (handle) the token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Codec signs and verifies access and refresh tokens. Both kinds are HS256
// JWTs, each with its own secret and lifetime. A Codec is safe for
// concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec from the server config.
func NewCodec(cfg *config.Config, opts ...CodecOption) *Codec {
	c := &Codec{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenValidityDuration,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
		now:           time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// IssueAccess returns a short-lived access token for username.
func (c *Codec) IssueAccess(username string) (string, error) {
	return c.issue(username, c.accessSecret, c.accessTTL)
}

// IssueRefresh returns a long-lived refresh token for username.
func (c *Codec) IssueRefresh(username string) (string, error) {
	return c.issue(username, c.refreshSecret, c.refreshTTL)
}

// VerifyAccess verifies an access token. See Verify for the error contract.
func (c *Codec) VerifyAccess(token string) (*Claims, error) {
	return c.Verify(token, c.accessSecret)
}

// VerifyRefresh verifies a refresh token. See Verify for the error contract.
func (c *Codec) VerifyRefresh(token string) (*Claims, error) {
	return c.Verify(token, c.refreshSecret)
}

// Verify checks token against secret.
//
// It returns common.ErrTokenExpired, together with the decoded claims, when
// the signature is valid but the token is past its expiry, and an error
// wrapping common.ErrInvalidToken for anything else: bad signature, malformed
// structure, unexpected algorithm, missing username.
func (c *Codec) Verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// the signature is checked before the claims, so an expiry error
		// means the token was signed with secret
		if errors.Is(err, jwt.ErrTokenExpired) && claims.Username != "" {
			return claims, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.Username == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// DecodeUnsafe extracts the claims of token without checking its signature
// or expiry. The result identifies which stored refresh token to look at
// and must never be used to authorize anything.
func (c *Codec) DecodeUnsafe(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) issue(username string, secret []byte, ttl time.Duration) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
