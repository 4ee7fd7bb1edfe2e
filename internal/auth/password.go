package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashAlgorithm     = "pbkdf2"
	DefaultIterations = 210000
	minIterations     = 100000
	saltBytes         = 16
	keyBytes          = 32
)

// ErrInvalidHash is returned when a stored credential cannot be parsed.
var ErrInvalidHash = errors.New("invalid password hash")

// HashPassword derives a self-describing credential: pbkdf2$<iterations>$<salt>$<digest>.
func HashPassword(password string) (string, error) {
	return hashWithIterations(password, DefaultIterations)
}

func hashWithIterations(password string, iterations int) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	digest := pbkdf2.Key([]byte(password), []byte(saltHex), iterations, keyBytes, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s", hashAlgorithm, iterations, saltHex, hex.EncodeToString(digest)), nil
}

// ComparePassword verifies a password against its stored credential in constant time.
func ComparePassword(encoded, plain string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != hashAlgorithm {
		return ErrInvalidHash
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < minIterations {
		return ErrInvalidHash
	}
	expected, err := hex.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return ErrInvalidHash
	}
	actual := pbkdf2.Key([]byte(plain), []byte(parts[2]), iterations, len(expected), sha256.New)
	if subtle.ConstantTimeCompare(actual, expected) != 1 {
		return errors.New("password mismatch")
	}
	return nil
}

// IsStrongPassword requires 10-128 chars with a lowercase, an uppercase and a digit.
func IsStrongPassword(password string) bool {
	if len(password) < 10 || len(password) > 128 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
