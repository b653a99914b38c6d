package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestNewJWTStrategy_Defaults(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if strategy.ttl != 24*time.Hour || strategy.issuer != defaultIssuer {
		t.Fatalf("unexpected defaults: ttl=%s issuer=%s", strategy.ttl, strategy.issuer)
	}

	custom := NewJWTStrategy("secret", Options{TTL: 2 * time.Hour, Issuer: "shop"})
	if custom.ttl != 2*time.Hour || custom.issuer != "shop" {
		t.Fatalf("unexpected options: ttl=%s issuer=%s", custom.ttl, custom.issuer)
	}
}

func TestJWTStrategy_IssueAndParse(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})

	for _, id := range []model.Identity{
		{UserID: 42, Role: model.RoleCustomer},
		{UserID: 1, Role: model.RoleAdmin},
	} {
		token, err := strategy.IssueToken(id)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		if strings.Count(token, ".") != 2 {
			t.Fatalf("expected compact jws, got %q", token)
		}
		got, err := strategy.ParseToken(token)
		if err != nil {
			t.Fatalf("parse token: %v", err)
		}
		if got != id {
			t.Fatalf("expected %+v, got %+v", id, got)
		}
	}
}

func TestJWTStrategy_RejectsInvalidTokens(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	valid, err := strategy.IssueToken(model.Identity{UserID: 42, Role: model.RoleCustomer})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	expired := NewJWTStrategy("secret", Options{TTL: time.Minute})
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, _ := expired.IssueToken(model.Identity{UserID: 42})

	otherSecret, _ := NewJWTStrategy("other", Options{}).IssueToken(model.Identity{UserID: 42})
	otherIssuer, _ := NewJWTStrategy("secret", Options{Issuer: "elsewhere"}).IssueToken(model.Identity{UserID: 42})

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	badSubject := sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc", Issuer: defaultIssuer, ExpiresAt: future}},
		jwt.SigningMethodHS256, []byte("secret"))
	badRole := sign(Claims{Role: "root", RegisteredClaims: jwt.RegisteredClaims{Subject: "7", Issuer: defaultIssuer, ExpiresAt: future}},
		jwt.SigningMethodHS256, []byte("secret"))
	noExpiry := sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7", Issuer: defaultIssuer}},
		jwt.SigningMethodHS256, []byte("secret"))
	wrongAlg := sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7", Issuer: defaultIssuer, ExpiresAt: future}},
		jwt.SigningMethodHS512, []byte("secret"))

	cases := map[string]string{
		"garbage":      "not-a-token",
		"tampered":     valid + "A",
		"expired":      expiredToken,
		"other secret": otherSecret,
		"other issuer": otherIssuer,
		"bad subject":  badSubject,
		"unknown role": badRole,
		"no expiry":    noExpiry,
		"wrong alg":    wrongAlg,
		"empty":        "",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected invalid token, got %v", err)
			}
		})
	}
}

func TestJWTStrategy_MissingRoleIsCustomer(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	token, err := strategy.IssueToken(model.Identity{UserID: 5})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	id, err := strategy.ParseToken(token)
	if err != nil || id.Role != model.RoleCustomer {
		t.Fatalf("expected customer role, got %+v err=%v", id, err)
	}
}
