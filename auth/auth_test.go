package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/coregx/relay"
	"github.com/coregx/relay/model"
)

type fakeUserRepo struct {
	users []model.User
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, relay.ErrNoData
}

func (r *fakeUserRepo) FindByAPIKey(_ context.Context, apiKey string) (model.User, error) {
	for _, u := range r.users {
		if u.APIKey == apiKey {
			return u, nil
		}
	}
	return model.User{}, relay.ErrNoData
}

func (r *fakeUserRepo) Create(_ context.Context, u model.User) (model.User, error) {
	r.users = append(r.users, u)
	return u, nil
}

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func testUser(t *testing.T, username, password, apiKey string) model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return model.NewUser(username, string(hash), apiKey)
}

func TestIssuerAndVerifier_RoundTrip(t *testing.T) {
	key := testKey(t)
	user := testUser(t, "alice", "s3cret", "key-alice")
	users := &fakeUserRepo{users: []model.User{user}}

	issuer, err := NewIssuer(key, users, time.Hour)
	require.NoError(t, err)
	verifier, err := NewVerifier(&key.PublicKey, users)
	require.NoError(t, err)

	token, err := issuer.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := verifier.Verify(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "alice", principal.Username)
}

func TestIssuer_Login_WrongPassword(t *testing.T) {
	key := testKey(t)
	users := &fakeUserRepo{users: []model.User{testUser(t, "alice", "s3cret", "k")}}
	issuer, err := NewIssuer(key, users, time.Hour)
	require.NoError(t, err)

	_, err = issuer.Login(context.Background(), "alice", "wrong")

	require.Error(t, err)
	assert.True(t, relay.IsAuthError(err))
}

func TestIssuer_Login_UnknownUserSameError(t *testing.T) {
	key := testKey(t)
	users := &fakeUserRepo{users: []model.User{testUser(t, "alice", "s3cret", "k")}}
	issuer, err := NewIssuer(key, users, time.Hour)
	require.NoError(t, err)

	_, wrongPass := issuer.Login(context.Background(), "alice", "wrong")
	_, unknownUser := issuer.Login(context.Background(), "nobody", "whatever")

	// Unknown user and wrong password are indistinguishable to the caller.
	require.Error(t, wrongPass)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPass.Error(), unknownUser.Error())
}

func TestVerifier_Verify_ExpiredToken(t *testing.T) {
	key := testKey(t)
	users := &fakeUserRepo{}
	verifier, err := NewVerifier(&key.PublicKey, users)
	require.NoError(t, err)

	claims := Claims{
		UID:      "u1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), "Bearer "+token)

	require.Error(t, err)
	assert.True(t, relay.IsAuthError(err))
}

func TestVerifier_Verify_WrongKey(t *testing.T) {
	signingKey := testKey(t)
	otherKey := testKey(t)
	verifier, err := NewVerifier(&otherKey.PublicKey, &fakeUserRepo{})
	require.NoError(t, err)

	claims := Claims{
		UID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(signingKey)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), "Bearer "+token)

	assert.True(t, relay.IsAuthError(err))
}

func TestVerifier_Verify_RejectsHMACToken(t *testing.T) {
	key := testKey(t)
	verifier, err := NewVerifier(&key.PublicKey, &fakeUserRepo{})
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"uid": "u1"}).
		SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), "Bearer "+token)

	assert.True(t, relay.IsAuthError(err))
}

func TestVerifier_Verify_APIKey(t *testing.T) {
	key := testKey(t)
	user := testUser(t, "bob", "pw", "key-bob")
	verifier, err := NewVerifier(&key.PublicKey, &fakeUserRepo{users: []model.User{user}})
	require.NoError(t, err)

	principal, err := verifier.Verify(context.Background(), "key-bob")
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "bob", principal.Username)
}

func TestVerifier_Verify_UnknownAPIKey(t *testing.T) {
	key := testKey(t)
	verifier, err := NewVerifier(&key.PublicKey, &fakeUserRepo{})
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), "no-such-key")

	assert.True(t, relay.IsAuthError(err))
}

func TestVerifier_Verify_EmptyCredential(t *testing.T) {
	key := testKey(t)
	verifier, err := NewVerifier(&key.PublicKey, &fakeUserRepo{})
	require.NoError(t, err)

	for _, credential := range []string{"", "   "} {
		_, err := verifier.Verify(context.Background(), credential)
		assert.True(t, relay.IsAuthError(err))
	}
}

func TestVerifier_Verify_MalformedCredential(t *testing.T) {
	key := testKey(t)
	verifier, err := NewVerifier(&key.PublicKey, &fakeUserRepo{})
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), "Basic dXNlcjpwYXNz extra")

	require.Error(t, err)
	assert.True(t, relay.IsAuthError(err))
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}
