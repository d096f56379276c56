// Package auth implements the credential verification collaborator consumed
// by the relay: bearer tokens signed with RS256 and static per-user API keys.
package auth

import (
	"context"
	"crypto/rsa"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coregx/relay"
)

// Claims carried by relay bearer tokens.
type Claims struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Verifier checks credentials against a trust anchor (RSA public key for
// bearer tokens) and an active-principal registry (user repository for API
// keys). It implements relay.Verifier.
type Verifier struct {
	publicKey *rsa.PublicKey
	users     relay.UserRepository
}

// NewVerifier creates a Verifier. Both arguments are required.
func NewVerifier(publicKey *rsa.PublicKey, users relay.UserRepository) (*Verifier, error) {
	if publicKey == nil {
		return nil, relay.NewError(relay.ErrCodeConfiguration, "public key is required")
	}
	if users == nil {
		return nil, relay.NewError(relay.ErrCodeConfiguration, "user repository is required")
	}
	return &Verifier{publicKey: publicKey, users: users}, nil
}

// Verify resolves a credential to a Principal.
//
// Accepted shapes: "Bearer <jwt>" (signature and expiry verified against the
// public key) or a bare API key (existence lookup among live users). Any
// other shape fails with AUTH_ERROR. Verification is never retried.
func (v *Verifier) Verify(ctx context.Context, credential string) (relay.Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return relay.Principal{}, relay.NewError(relay.ErrCodeAuth, "missing credential")
	}

	if token, ok := strings.CutPrefix(credential, "Bearer "); ok {
		return v.verifyToken(token)
	}

	if strings.ContainsAny(credential, " \t") {
		return relay.Principal{}, relay.NewError(relay.ErrCodeAuth, "invalid credential format")
	}

	return v.verifyAPIKey(ctx, credential)
}

func (v *Verifier) verifyToken(token string) (relay.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, relay.NewError(relay.ErrCodeAuth, "unexpected signing method")
		}
		return v.publicKey, nil
	})
	if err != nil {
		return relay.Principal{}, relay.NewErrorWithCause(relay.ErrCodeAuth, "invalid token", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return relay.Principal{}, relay.NewError(relay.ErrCodeAuth, "invalid token")
	}

	return relay.Principal{UserID: claims.UID, Username: claims.Username}, nil
}

func (v *Verifier) verifyAPIKey(ctx context.Context, key string) (relay.Principal, error) {
	user, err := v.users.FindByAPIKey(ctx, key)
	if err != nil {
		if relay.IsNoData(err) {
			return relay.Principal{}, relay.NewError(relay.ErrCodeAuth, "unknown api key")
		}
		return relay.Principal{}, relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to look up api key", err)
	}
	return relay.Principal{UserID: user.ID, Username: user.Username}, nil
}

// Issuer signs bearer tokens after a successful password check.
type Issuer struct {
	privateKey *rsa.PrivateKey
	users      relay.UserRepository
	ttl        time.Duration
}

// NewIssuer creates an Issuer. TTL defaults to 24h when zero.
func NewIssuer(privateKey *rsa.PrivateKey, users relay.UserRepository, ttl time.Duration) (*Issuer, error) {
	if privateKey == nil {
		return nil, relay.NewError(relay.ErrCodeConfiguration, "private key is required")
	}
	if users == nil {
		return nil, relay.NewError(relay.ErrCodeConfiguration, "user repository is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{privateKey: privateKey, users: users, ttl: ttl}, nil
}

// Login verifies username/password and returns a signed RS256 bearer token.
// Unknown users and wrong passwords both fail with the same AUTH_ERROR.
func (i *Issuer) Login(ctx context.Context, username, password string) (string, error) {
	user, err := i.users.FindByUsername(ctx, username)
	if err != nil {
		if relay.IsNoData(err) {
			return "", relay.NewError(relay.ErrCodeAuth, "invalid username or password")
		}
		return "", relay.NewErrorWithCause(relay.ErrCodeDatabase, "failed to look up user", err)
	}

	if !CheckPassword(user.HashedPassword, password) {
		return "", relay.NewError(relay.ErrCodeAuth, "invalid username or password")
	}

	claims := Claims{
		UID:      user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.ttl)),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(i.privateKey)
	if err != nil {
		return "", relay.NewErrorWithCause(relay.ErrCodeConfiguration, "failed to sign token", err)
	}
	return signed, nil
}
