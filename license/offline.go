package license

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Offline licenses are vendor-signed RS256 tokens prefixed "lic_". They
// validate without a registry round trip: signature, expiry, and scope claims
// are checked locally, which keeps air-gapped CI and team seats working when
// the registry is unreachable. Revocation of an offline token is expiry-only.

const offlineScheme = "lic_"

// IsOfflineToken reports whether credential looks like an offline license.
func IsOfflineToken(credential string) bool {
	return strings.HasPrefix(credential, offlineScheme)
}

// OfflineClaims are the custom claims embedded in an offline license token.
type OfflineClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// OfflineValidator verifies offline license tokens against pinned public keys.
type OfflineValidator struct {
	keys map[string]*rsa.PublicKey
	now  func() time.Time
}

// NewOfflineValidator builds a validator over kid -> public key.
func NewOfflineValidator(keys map[string]*rsa.PublicKey) *OfflineValidator {
	return &OfflineValidator{keys: keys, now: time.Now}
}

// NewOfflineValidatorFromPEM parses one PEM-encoded RSA public key.
func NewOfflineValidatorFromPEM(kid string, pemBytes []byte) (*OfflineValidator, error) {
	if len(pemBytes) == 0 {
		return nil, errors.New("empty offline verification key pem")
	}
	blk, _ := pem.Decode(pemBytes)
	if blk == nil {
		return nil, errors.New("failed to decode offline verification key pem")
	}
	parsed, err := x509.ParsePKIXPublicKey(blk.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse offline verification key: %w", err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("offline verification key is not RSA")
	}
	return NewOfflineValidator(map[string]*rsa.PublicKey{kid: pub}), nil
}

// PublicKeys returns the pinned verification keys keyed by kid.
func (v *OfflineValidator) PublicKeys() map[string]*rsa.PublicKey {
	out := make(map[string]*rsa.PublicKey, len(v.keys))
	for kid, key := range v.keys {
		out[kid] = key
	}
	return out
}

// Validate implements Validator. Credentials that are not offline tokens
// report key-invalid so a Chain can fall through to the registry.
func (v *OfflineValidator) Validate(_ context.Context, credential string) (Decision, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Deny(ReasonNoKey), nil
	}
	if !IsOfflineToken(credential) {
		return Deny(ReasonKeyInvalid), nil
	}
	raw := strings.TrimPrefix(credential, offlineScheme)

	claims := &OfflineClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Deny(ReasonKeyExpired), nil
		}
		return Deny(ReasonKeyInvalid), nil
	}
	if !token.Valid {
		return Deny(ReasonKeyInvalid), nil
	}
	return Allow(claims.Scope), nil
}

func (v *OfflineValidator) keyFunc(token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown signing key %q", kid)
}

// OfflineIssuer signs offline license tokens. Production issuance lives in the
// purchase pipeline; this signer backs tests and the vendor tooling.
type OfflineIssuer struct {
	key *rsa.PrivateKey
	kid string
}

// NewOfflineIssuer generates an in-memory RSA issuer.
func NewOfflineIssuer(bits int, kid string) (*OfflineIssuer, error) {
	if bits == 0 {
		bits = 2048
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return &OfflineIssuer{key: key, kid: kid}, nil
}

// KID returns the signing key id.
func (i *OfflineIssuer) KID() string { return i.kid }

// PublicKey returns the verification key for this issuer.
func (i *OfflineIssuer) PublicKey() *rsa.PublicKey { return &i.key.PublicKey }

// Issue signs an offline license for scope valid for ttl.
func (i *OfflineIssuer) Issue(subject, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := OfflineClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = i.kid
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign offline license: %w", err)
	}
	return offlineScheme + signed, nil
}
