package auth

import "testing"

func TestPasswordHashAndVerify(t *testing.T) {
	h := NewPasswordHasher()
	hash, err := h.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash must not equal the plain password")
	}
	if !h.Verify("hunter2", hash) {
		t.Error("correct password must verify")
	}
	if h.Verify("hunter3", hash) {
		t.Error("wrong password must not verify")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewPasswordHasher()
	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password must differ")
	}
}
