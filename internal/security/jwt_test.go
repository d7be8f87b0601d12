package security

import (
	"testing"
	"time"
)

func TestJWTSignAndParse(t *testing.T) {
	mgr := NewJWTManager("universities-api", "0123456789abcdef0123456789abcdef", time.Hour)

	raw, err := mgr.Sign("ana@example.com", "Ana", "Souza")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := mgr.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "ana@example.com" || claims.FirstName != "Ana" || claims.LastName != "Souza" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTParseRejectsExpired(t *testing.T) {
	mgr := NewJWTManager("universities-api", "0123456789abcdef0123456789abcdef", -time.Minute)
	raw, err := mgr.Sign("ana@example.com", "Ana", "Souza")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := mgr.Parse(raw); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestJWTParseRejectsForeignSecret(t *testing.T) {
	a := NewJWTManager("universities-api", "0123456789abcdef0123456789abcdef", time.Hour)
	b := NewJWTManager("universities-api", "ffffffffffffffffffffffffffffffff", time.Hour)
	raw, err := a.Sign("ana@example.com", "Ana", "Souza")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := b.Parse(raw); err == nil {
		t.Fatal("expected token signed with different secret to be rejected")
	}
}
