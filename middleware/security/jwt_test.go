package security

import (
	"testing"
	"time"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("secret"))
	token, exp, err := Generate(opts, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", exp)
	}
	uid, err := Verify(opts, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if uid != "alice" {
		t.Fatalf("subject: got %q want alice", uid)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("secret-a")), "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := Verify(DefaultOptions([]byte("secret-b")), token); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestVerifyGarbage(t *testing.T) {
	if _, err := Verify(DefaultOptions([]byte("secret")), "not.a.token"); err == nil {
		t.Fatal("garbage must not verify")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	// Generate clamps non-positive TTLs, so use a tiny one and wait it out.
	opts := Options{Secret: []byte("secret"), Alg: "HS256", TTL: time.Millisecond}
	token, _, err := Generate(opts, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := Verify(opts, token); err == nil {
		t.Fatal("expired token must not verify")
	}
}

func TestAlgSelection(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512", "hs256", " HS512 "} {
		opts := Options{Secret: []byte("secret"), Alg: alg, TTL: time.Hour}
		token, _, err := Generate(opts, "bob")
		if err != nil {
			t.Fatalf("alg=%q generate: %v", alg, err)
		}
		if _, err := Verify(opts, token); err != nil {
			t.Fatalf("alg=%q verify: %v", alg, err)
		}
	}
	if _, _, err := Generate(Options{Secret: []byte("s"), Alg: "RS256"}, "bob"); err == nil {
		t.Fatal("non-HMAC alg must be rejected")
	}
}
