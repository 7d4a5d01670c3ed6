package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a random alphanumeric string read from the
// system CSPRNG. It is used for secrets and OAuth state values.
func GenerateRandomString(limit int) string {
	result := make([]byte, limit)
	max := big.NewInt(int64(len(chars)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		result[i] = chars[n.Int64()]
	}

	return string(result)
}

// CleanStrings trims every entry and drops the empty ones, keeping order.
func CleanStrings(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

// StringOrNil maps an empty or blank string to nil.
func StringOrNil(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
