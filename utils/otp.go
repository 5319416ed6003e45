package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// GenerateNumericOTP returns a random code of exactly the given number of digits.
// The first digit is never zero, so a 4 digit code is in [1000, 9999].
func GenerateNumericOTP(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("invalid OTP length %d", digits)
	}
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(low, big.NewInt(10)), low)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return n.Add(n, low).String(), nil
}

// IsNumericOTP reports whether code consists of exactly the given number of digits.
func IsNumericOTP(code string, digits int) bool {
	if len(code) != digits {
		return false
	}
	return strings.Trim(code, "0123456789") == ""
}
