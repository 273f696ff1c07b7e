package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func parse(t *testing.T, token, secret string) jwtlib.MapClaims {
	t.Helper()

	tok, err := jwtlib.Parse(token, func(tok *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	claims, ok := tok.Claims.(jwtlib.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	return claims
}

func TestIssue_Claims(t *testing.T) {
	tok, err := Issue("s3cret", 42, "admin", 2)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims := parse(t, tok, "s3cret")
	if sub, _ := claims["sub"].(float64); int64(sub) != 42 {
		t.Fatalf("sub = %v; want 42", claims["sub"])
	}
	if role, _ := claims["role"].(string); role != "admin" {
		t.Fatalf("role = %v; want admin", claims["role"])
	}

	exp, _ := claims["exp"].(float64)
	want := time.Now().Add(2 * time.Hour).Unix()
	if got := int64(exp); got < want-60 || got > want+60 {
		t.Fatalf("exp = %d; want ~%d", got, want)
	}
}

func TestIssue_WrongSecretFailsVerification(t *testing.T) {
	tok, err := Issue("s3cret", 42, "user", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = jwtlib.Parse(tok, func(tok *jwtlib.Token) (interface{}, error) {
		return []byte("other"), nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}
