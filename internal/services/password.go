package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Hashes use the passlib modular format $pbkdf2-sha256$<rounds>$<salt>$<checksum>
// with passlib's base64 alphabet ("." instead of "+", no padding).
const (
	pbkdf2Ident    = "pbkdf2-sha256"
	pbkdf2Rounds   = 29000
	pbkdf2SaltLen  = 16
	pbkdf2KeyLen   = 32
	pbkdf2MinRound = 1
)

var ErrFailedToHashPassword = errors.New("failed to hash password")

var ab64 = base64.RawStdEncoding

// HashPassword derives a salted PBKDF2-SHA256 hash of password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}

	sum := pbkdf2.Key([]byte(password), salt, pbkdf2Rounds, pbkdf2KeyLen, sha256.New)

	return fmt.Sprintf("$%s$%d$%s$%s", pbkdf2Ident, pbkdf2Rounds, encodeAB64(salt), encodeAB64(sum)), nil
}

// VerifyPassword reports whether password matches hash. PBKDF2 and bcrypt
// encodings are accepted; anything malformed is a mismatch.
func VerifyPassword(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$"+pbkdf2Ident+"$"):
		return verifyPBKDF2(password, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	default:
		return false
	}
}

func verifyPBKDF2(password, hash string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 5 {
		return false
	}

	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds < pbkdf2MinRound {
		return false
	}

	salt, err := decodeAB64(parts[3])
	if err != nil {
		return false
	}

	want, err := decodeAB64(parts[4])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func encodeAB64(b []byte) string {
	return strings.ReplaceAll(ab64.EncodeToString(b), "+", ".")
}

func decodeAB64(s string) ([]byte, error) {
	return ab64.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
