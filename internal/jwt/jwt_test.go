package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey *rsa.PrivateKey

func setupKeys(t *testing.T) {
	t.Helper()

	if testKey == nil {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		testKey = key
	}

	SetKeys(testKey, &testKey.PublicKey)
}

func signClaims(t *testing.T, claims jwtgo.RegisteredClaims) string {
	t.Helper()

	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, claims)
	signed, err := token.SignedString(testKey)
	require.NoError(t, err)
	return signed
}

func TestSignAndValidateOccupantID(t *testing.T) {
	setupKeys(t)

	sign, err := Sign("alice")
	assert.NoError(t, err)

	id, err := ValidOccupantID(sign)
	assert.NoError(t, err)
	assert.Equal(t, "alice", id)

	_, err = Sign("")
	assert.Error(t, err)
}

func TestValidOccupantID_InvalidAudience(t *testing.T) {
	setupKeys(t)

	signed := signClaims(t, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{"different-audience"},
		ID:       uuid.New().String(),
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   Issuer,
		Subject:  "alice",
	})

	id, err := ValidOccupantID(signed)
	assert.EqualError(t, err, "invalid audience")
	assert.Equal(t, "", id)
}

func TestValidOccupantID_InvalidIssuer(t *testing.T) {
	setupKeys(t)

	signed := signClaims(t, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{Audience},
		ID:       uuid.New().String(),
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   "someone-else",
		Subject:  "alice",
	})

	id, err := ValidOccupantID(signed)
	assert.EqualError(t, err, "invalid issuer")
	assert.Equal(t, "", id)
}

func TestValidOccupantID_Expired(t *testing.T) {
	setupKeys(t)

	signed := signClaims(t, jwtgo.RegisteredClaims{
		Audience:  jwtgo.ClaimStrings{Audience},
		IssuedAt:  jwtgo.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwtgo.NewNumericDate(time.Now().Add(-time.Hour)),
		Issuer:    Issuer,
		Subject:   "alice",
	})

	_, err := ValidOccupantID(signed)
	assert.ErrorIs(t, err, jwtgo.ErrTokenExpired)
}

func TestValidOccupantID_WrongKey(t *testing.T) {
	setupKeys(t)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{Audience},
		Issuer:   Issuer,
		Subject:  "alice",
	})
	signed, err := token.SignedString(other)
	require.NoError(t, err)

	_, err = ValidOccupantID(signed)
	assert.Error(t, err)
}
