package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func staticKeyfunc(pub *ecdsa.PublicKey) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) { return pub, nil }
}

func sign(t *testing.T, key *ecdsa.PrivateKey, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims() jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    "https://idp.example.com",
		Audience:  jwt.ClaimStrings{"ezapp"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	key := newKey(t)
	v := NewVerifierWithKeyfunc(staticKeyfunc(&key.PublicKey), "https://idp.example.com", "ezapp")

	claims, err := v.Verify(sign(t, key, validClaims()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
}

func TestVerifyRejects(t *testing.T) {
	key := newKey(t)
	other := newKey(t)
	v := NewVerifierWithKeyfunc(staticKeyfunc(&key.PublicKey), "https://idp.example.com", "ezapp")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	noExp := validClaims()
	noExp.ExpiresAt = nil
	noSub := validClaims()
	noSub.Subject = ""
	wrongIss := validClaims()
	wrongIss.Issuer = "https://evil.example.com"
	wrongAud := validClaims()
	wrongAud.Audience = jwt.ClaimStrings{"other"}

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa key: %v", err)
	}
	rs256, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims()).SignedString(rsaKey)
	if err != nil {
		t.Fatalf("sign rs256: %v", err)
	}

	cases := map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"expired":         sign(t, key, expired),
		"no expiry":       sign(t, key, noExp),
		"no subject":      sign(t, key, noSub),
		"wrong issuer":    sign(t, key, wrongIss),
		"wrong audience":  sign(t, key, wrongAud),
		"wrong signature": sign(t, other, validClaims()),
		"wrong algorithm": rs256,
	}
	for name, raw := range cases {
		if _, err := v.Verify(raw); !errors.Is(err, ErrAuthentication) {
			t.Errorf("%s: expected ErrAuthentication, got %v", name, err)
		}
	}
}

func TestVerifySkipsUnsetIssuerAndAudience(t *testing.T) {
	key := newKey(t)
	v := NewVerifierWithKeyfunc(staticKeyfunc(&key.PublicKey), "", "")
	claims := validClaims()
	claims.Issuer = "anyone"
	claims.Audience = nil
	if _, err := v.Verify(sign(t, key, claims)); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
