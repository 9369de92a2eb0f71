// Path: pkg/utils/utils.go
package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"
)

const bearerPrefix = "Bearer "

// CreateHMAC creates an HMAC-SHA256 hash of the given data.
func CreateHMAC(data string, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// CalculateBalanceHash binds a balance to the account number it belongs to.
func CalculateBalanceHash(balance decimal.Decimal, accountNumber string, secret []byte) string {
	return CreateHMAC(fmt.Sprintf("%s:%s", balance.StringFixed(2), accountNumber), secret)
}

// VerifyBalanceHash reports whether hash matches balance and accountNumber.
func VerifyBalanceHash(balance decimal.Decimal, accountNumber, hash string, secret []byte) bool {
	expected := CalculateBalanceHash(balance, accountNumber, secret)
	return hmac.Equal([]byte(expected), []byte(hash))
}

// GenerateAccountNumber returns a zero-padded six digit account number.
func GenerateAccountNumber() string {
	return fmt.Sprintf("%06d", rand.Intn(1_000_000))
}

// BearerToken extracts the token from an Authorization header value.
// ok is false when the header is empty or does not use the Bearer scheme.
func BearerToken(header string) (token string, ok bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token = header[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
