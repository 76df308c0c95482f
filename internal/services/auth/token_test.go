package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestInspectToken(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
		TokenType:        "access",
		UserID:           42,
		Username:         "operator",
	})
	signed, err := token.SignedString([]byte("server-only-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	claims, err := InspectToken(signed)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "operator" || claims.TokenType != "access" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Expired(expires.Add(-time.Minute)) {
		t.Fatal("token should be valid before expiry")
	}
	if !claims.Expired(expires) {
		t.Fatal("token should be expired at expiry")
	}
	if got := claims.ExpiresIn(expires.Add(-time.Minute)); got != time.Minute {
		t.Fatalf("ExpiresIn = %s", got)
	}
	if got := claims.ExpiresIn(expires.Add(time.Hour)); got != 0 {
		t.Fatalf("ExpiresIn after expiry = %s", got)
	}
}

func TestInspectTokenRejectsGarbage(t *testing.T) {
	if _, err := InspectToken("not-a-token"); err == nil {
		t.Fatal("expected error")
	}
}

func TestClaimsWithoutExpiryNeverExpire(t *testing.T) {
	var claims Claims
	if claims.Expired(time.Now()) || claims.ExpiresIn(time.Now()) != 0 {
		t.Fatal("expected no expiry")
	}
}
