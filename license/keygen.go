package license

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/bcrypt"
)

// Key format: sk-<prefix>-<secret>, both segments base58. The prefix is the
// registry lookup handle; the secret is bcrypt-hashed at rest and the full
// key is shown exactly once at issuance.

const (
	keyScheme    = "sk"
	prefixBytes  = 6
	secretBytes  = 24
	bcryptRounds = bcrypt.DefaultCost
)

// GeneratedKey pairs the plaintext key with what the registry stores.
type GeneratedKey struct {
	Key       string
	KeyPrefix string
	KeyHash   string
}

// GenerateKey mints a fresh bearer key and its at-rest representation.
func GenerateKey() (GeneratedKey, error) {
	prefix, err := randomBase58(prefixBytes)
	if err != nil {
		return GeneratedKey{}, fmt.Errorf("generate key prefix: %w", err)
	}
	secret, err := randomBase58(secretBytes)
	if err != nil {
		return GeneratedKey{}, fmt.Errorf("generate key secret: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptRounds)
	if err != nil {
		return GeneratedKey{}, fmt.Errorf("hash key secret: %w", err)
	}
	return GeneratedKey{
		Key:       fmt.Sprintf("%s-%s-%s", keyScheme, prefix, secret),
		KeyPrefix: prefix,
		KeyHash:   string(hash),
	}, nil
}

// SplitKey parses a bearer key into its prefix and secret segments.
func SplitKey(key string) (prefix, secret string, err error) {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) != 3 || parts[0] != keyScheme || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("malformed license key")
	}
	return parts[1], parts[2], nil
}

// VerifyKeyHash compares a stored bcrypt hash with a presented secret.
func VerifyKeyHash(hash, secret string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	return err == nil, err
}

func randomBase58(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base58.Encode(buf), nil
}
