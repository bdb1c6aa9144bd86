package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/config"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

func TestHMACRoundTrip(t *testing.T) {
	p := NewHMACProvider("secret", "yazili", time.Hour)

	token, exp, err := p.Issue("user-1", model.RoleTeacher)
	if err != nil {
		t.Fatal(err)
	}
	id, err := p.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Subject != "user-1" || id.Role != model.RoleTeacher {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.TokenID == "" {
		t.Error("token id should be set")
	}
	if !id.ExpiresAt.Equal(exp.Truncate(time.Second)) {
		t.Errorf("expires = %v, want %v", id.ExpiresAt, exp)
	}
}

func TestHMACRejectsWrongSecret(t *testing.T) {
	token, _, _ := NewHMACProvider("a", "", time.Hour).Issue("u", model.RoleStudent)
	_, err := NewHMACProvider("b", "", time.Hour).Verify(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestHMACRejectsExpired(t *testing.T) {
	p := NewHMACProvider("secret", "", time.Minute)
	p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, _ := p.Issue("u", model.RoleStudent)

	p.now = time.Now
	if _, err := p.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestHMACRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewHMACProvider("s", "", time.Hour).Verify(context.Background(), token); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func rsaKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, string(pemKey)
}

func TestPublicKeyVerifier(t *testing.T) {
	key, pemKey := rsaKeyPair(t)
	v, err := NewPublicKeyVerifier(pemKey, "https://idp.test", "")
	if err != nil {
		t.Fatal(err)
	}

	sign := func(c Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, c).SignedString(key)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	base := jwt.RegisteredClaims{
		Subject:   "ext-42",
		Issuer:    "https://idp.test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	id, err := v.Verify(context.Background(), sign(Claims{RegisteredClaims: base, Role: "Teacher"}))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Subject != "ext-42" || id.Role != model.RoleTeacher {
		t.Fatalf("unexpected identity: %+v", id)
	}

	id, err = v.Verify(context.Background(), sign(Claims{RegisteredClaims: base}))
	if err != nil {
		t.Fatal(err)
	}
	if id.Role != model.RoleStudent {
		t.Fatalf("missing role should default to student, got %q", id.Role)
	}

	wrongIssuer := base
	wrongIssuer.Issuer = "https://evil.test"
	if _, err := v.Verify(context.Background(), sign(Claims{RegisteredClaims: wrongIssuer})); err == nil {
		t.Fatal("token from another issuer accepted")
	}

	hmacToken, _, _ := NewHMACProvider("s", "", time.Hour).Issue("ext-42", model.RoleAdmin)
	if _, err := v.Verify(context.Background(), hmacToken); err == nil {
		t.Fatal("HS256 token accepted by public key verifier")
	}
}

func TestFromConfig(t *testing.T) {
	v, iss, err := FromConfig(&config.Config{AuthProvider: config.AuthProviderLocal, JWTSecret: "s", JWTExpiry: time.Hour})
	if err != nil || v == nil || iss == nil {
		t.Fatalf("local provider: v=%v iss=%v err=%v", v, iss, err)
	}

	if _, _, err := FromConfig(&config.Config{AuthProvider: config.AuthProviderExternal}); err == nil {
		t.Fatal("external provider without key should fail")
	}

	if _, _, err := FromConfig(&config.Config{AuthProvider: "firebase"}); err == nil {
		t.Fatal("unknown provider should fail")
	}
}
