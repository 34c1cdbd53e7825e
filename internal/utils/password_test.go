package utils

import "testing"

// minCost keeps bcrypt fast in tests; production cost comes from config.
const minCost = 4

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", minCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("correct password must verify")
	}
	if VerifyPassword(hash, "S3cret") {
		t.Fatal("wrong password must not verify")
	}
	if VerifyPassword(hash, "") {
		t.Fatal("empty password must not verify")
	}
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatal("malformed hash must never verify")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("same", minCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("same", minCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ (salt)")
	}
}
