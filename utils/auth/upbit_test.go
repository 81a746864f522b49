package auth

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeQueryHash_SortedKeys(t *testing.T) {
	sum := sha512.Sum512([]byte("market=KRW-BTC&side=bid"))
	want := hex.EncodeToString(sum[:])

	assert.Equal(t, want, MakeQueryHash(map[string]string{"side": "bid", "market": "KRW-BTC"}))
	assert.Equal(t, "", MakeQueryHash(nil))
}

func parseClaims(t *testing.T, header string) jwt.MapClaims {
	t.Helper()
	require.True(t, strings.HasPrefix(header, "Bearer "))
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return claims
}

func TestUpbitSigner_Authorization(t *testing.T) {
	signer := NewUpbitSigner("access", "secret")
	params := map[string]string{"market": "KRW-BTC"}

	header, err := signer.Authorization(params)
	require.NoError(t, err)
	claims := parseClaims(t, header)
	assert.Equal(t, "access", claims["access_key"])
	assert.Equal(t, MakeQueryHash(params), claims["query_hash"])
	assert.Equal(t, "SHA512", claims["query_hash_alg"])
	_, err = uuid.Parse(claims["nonce"].(string))
	assert.NoError(t, err)

	header, err = signer.Authorization(nil)
	require.NoError(t, err)
	_, ok := parseClaims(t, header)["query_hash"]
	assert.False(t, ok)
}

func TestUpbitSigner_MissingKeys(t *testing.T) {
	_, err := NewUpbitSigner("", "secret").Authorization(nil)
	assert.ErrorIs(t, err, ErrMissingKeys)
}
