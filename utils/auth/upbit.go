package auth

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var ErrMissingKeys = errors.New("upbit access/secret key is empty")

// UpbitSigner : 주문 API 용 Authorization 헤더 생성 (HS256, query_hash SHA512)
type UpbitSigner struct {
	accessKey string
	secretKey string
}

func NewUpbitSigner(accessKey, secretKey string) UpbitSigner {
	return UpbitSigner{accessKey: accessKey, secretKey: secretKey}
}

// Authorization : "Bearer <jwt>". params 가 비어 있으면 query_hash 생략
func (s UpbitSigner) Authorization(params map[string]string) (string, error) {
	if s.accessKey == "" || s.secretKey == "" {
		return "", ErrMissingKeys
	}
	claims := jwt.MapClaims{
		"access_key": s.accessKey,
		"nonce":      uuid.NewString(),
	}
	if len(params) > 0 {
		claims["query_hash"] = MakeQueryHash(params)
		claims["query_hash_alg"] = "SHA512"
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secretKey))
	if err != nil {
		return "", err
	}
	return "Bearer " + signed, nil
}

// MakeQueryHash : 키 정렬한 "k=v&k=v" 의 SHA512 hex
func MakeQueryHash(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := lo.Keys(params)
	sort.Strings(keys)
	query := strings.Join(lo.Map(keys, func(k string, _ int) string { return k + "=" + params[k] }), "&")

	sum := sha512.Sum512([]byte(query))
	return hex.EncodeToString(sum[:])
}
