package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "stockgrid",
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
		ActorID: "user-1",
		Name:    "Test Operator",
		Email:   "operator@example.com",
		Roles:   []string{"catalog:write"},
	}
}

func TestVerify_ValidToken(t *testing.T) {
	verifier := NewJWTVerifier(DefaultJWTConfig(testSecret))
	tokenString := signToken(t, testSecret, validClaims())

	actor, err := verifier.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.ActorID)
	assert.Equal(t, "operator@example.com", actor.Email)
	assert.Equal(t, []string{"catalog:write"}, actor.Roles)
}

func TestVerify_FallsBackToSubject(t *testing.T) {
	verifier := NewJWTVerifier(DefaultJWTConfig(testSecret))
	claims := validClaims()
	claims.ActorID = ""

	actor, err := verifier.Verify(signToken(t, testSecret, claims))
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.ActorID)
}

func TestVerify_NoActorIdentity(t *testing.T) {
	verifier := NewJWTVerifier(DefaultJWTConfig(testSecret))
	claims := validClaims()
	claims.ActorID = ""
	claims.Subject = ""

	_, err := verifier.Verify(signToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	verifier := NewJWTVerifier(DefaultJWTConfig(testSecret))
	tokenString := signToken(t, "another-secret", validClaims())

	_, err := verifier.Verify(tokenString)
	assert.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	verifier := NewJWTVerifier(DefaultJWTConfig(testSecret))
	claims := validClaims()
	claims.Issuer = "someone-else"

	_, err := verifier.Verify(signToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestVerify_ExpiredToken(t *testing.T) {
	verifier := NewJWTVerifier(DefaultJWTConfig(testSecret))
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := verifier.Verify(signToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestVerify_RejectsNonHMAC(t *testing.T) {
	verifier := NewJWTVerifier(DefaultJWTConfig(testSecret))

	// alg=none token forged from valid claims
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.Verify(tokenString)
	assert.Error(t, err)
}
