package encrypt

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	enc, err := NewEncryptor(testKey())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ct, err := enc.Encrypt("customer@example.com")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	plain, err := enc.Decrypt(ct)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if plain != "customer@example.com" {
		t.Fatalf("expected round trip, got %q", plain)
	}
}

func TestEncryptor_CiphertextIsASCIISafe(t *testing.T) {
	t.Parallel()

	enc, err := NewEncryptor(testKey())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ct, err := enc.Encrypt("příliš žluťoučký kůň")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	for _, r := range ct {
		if r < '!' || r > '~' {
			t.Fatalf("ciphertext contains non printable ASCII rune %q in %q", r, ct)
		}
	}
}

func TestEncryptor_NoncesDiffer(t *testing.T) {
	t.Parallel()

	enc, err := NewEncryptor(testKey())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	a, err := enc.Encrypt("same input")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	b, err := enc.Encrypt("same input")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct ciphertexts under random nonces")
	}
}

func TestNewEncryptorFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "secret.key")
	if err := os.WriteFile(path, []byte(hex.EncodeToString(testKey())+"\n"), 0o600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	enc, err := NewEncryptorFromFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := enc.Encrypt("x"); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := NewEncryptorFromFile(filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Fatalf("expected error for missing key file")
		}
	})

	t.Run("bad key length", func(t *testing.T) {
		short := filepath.Join(t.TempDir(), "short.key")
		if err := os.WriteFile(short, []byte("abcd"), 0o600); err != nil {
			t.Fatalf("failed to write key file: %v", err)
		}
		if _, err := NewEncryptorFromFile(short); err == nil {
			t.Fatalf("expected error for short key")
		}
	})
}
