package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"caresaviour/config"
	"caresaviour/models"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingClaim = errors.New("token does not carry a valid subject and role")
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "CARESAVIOUR"
	}
	return []byte(secret)
}

// GenerateCallerToken signs a token describing the caller. The token expires
// after the given duration.
func GenerateCallerToken(caller models.Caller, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   caller.ID,
		"role":  string(caller.Role),
		"name":  caller.Name,
		"phone": caller.Phone,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ParseCallerToken validates the token and rebuilds the caller it describes,
// along with the token's expiry.
func ParseCallerToken(tokenString string) (models.Caller, time.Time, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return models.Caller{}, time.Time{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Caller{}, time.Time{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return models.Caller{}, time.Time{}, ErrMissingClaim
	}
	switch models.Role(role) {
	case models.RoleUser, models.RoleVendor, models.RoleAdmin:
	default:
		return models.Caller{}, time.Time{}, ErrMissingClaim
	}

	var expiresAt time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0)
	}
	name, _ := claims["name"].(string)
	phone, _ := claims["phone"].(string)
	return models.Caller{ID: sub, Role: models.Role(role), Name: name, Phone: phone}, expiresAt, nil
}
