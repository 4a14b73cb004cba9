package crypto

import (
	"bytes"
	"testing"
)

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	svc := NewKeyChainService()

	s1, err := svc.GenerateEncryptionSalt()
	if err != nil {
		t.Fatalf("GenerateEncryptionSalt error: %v", err)
	}
	s2, err := svc.GenerateEncryptionSalt()
	if err != nil {
		t.Fatalf("GenerateEncryptionSalt error: %v", err)
	}

	if len(s1) != 16 {
		t.Fatalf("salt length = %d, want 16", len(s1))
	}
	if len(s2) != 16 {
		t.Fatalf("salt length = %d, want 16", len(s2))
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("expected salts to differ, but they are equal")
	}
}

func TestGenerateKEK_DeterministicForSameInputs(t *testing.T) {
	svc := NewKeyChainService()

	password := "correct horse battery staple"
	salt := bytes.Repeat([]byte{0xAB}, 16)

	k1 := svc.GenerateKEK(password, salt)
	k2 := svc.GenerateKEK(password, salt)

	if len(k1) != 32 {
		t.Fatalf("KEK length = %d, want 32", len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected KEKs to match for same password+salt")
	}
}

func TestGenerateKEK_DifferentSaltProducesDifferentKEK(t *testing.T) {
	svc := NewKeyChainService()

	password := "same password"
	salt1 := bytes.Repeat([]byte{0x01}, 16)
	salt2 := bytes.Repeat([]byte{0x02}, 16)

	k1 := svc.GenerateKEK(password, salt1)
	k2 := svc.GenerateKEK(password, salt2)

	if bytes.Equal(k1, k2) {
		t.Fatalf("expected different KEKs for different salts")
	}
}

func TestGenerateAuthHash_DeterministicAndSeparated(t *testing.T) {
	svc := NewKeyChainService()

	kek := bytes.Repeat([]byte{0x11}, 32)

	a1 := svc.GenerateAuthHash(kek, "auth-purpose")
	a2 := svc.GenerateAuthHash(kek, "auth-purpose")
	if !bytes.Equal(a1, a2) {
		t.Fatalf("expected AuthHash to be deterministic")
	}

	a3 := svc.GenerateAuthHash(kek, "other-purpose")
	if bytes.Equal(a1, a3) {
		t.Fatalf("expected AuthHash to differ for different authSalt")
	}
}
