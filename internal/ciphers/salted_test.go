package ciphers

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func TestEVPBytesToKeyKnownDigests(t *testing.T) {
	tests := []struct {
		name       string
		passphrase string
		expected   string
	}{
		// A single MD5 block over the passphrase when there is no salt.
		{"Empty", "", "d41d8cd98f00b204e9800998ecf8427e"},
		{"ABC", "abc", "900150983cd24fb0d6963f7d28e17f72"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, iv := evpBytesToKey([]byte(tc.passphrase), nil, 16, 0)
			if hex.EncodeToString(key) != tc.expected {
				t.Errorf("Expected key %s, got %x", tc.expected, key)
			}
			if len(iv) != 0 {
				t.Errorf("Expected empty iv, got %d bytes", len(iv))
			}
		})
	}
}

func TestEVPBytesToKeyLengths(t *testing.T) {
	salt := []byte("12345678")
	key, iv := evpBytesToKey([]byte("secret"), salt, 32, 16)
	if len(key) != 32 || len(iv) != 16 {
		t.Fatalf("Expected 32/16 bytes, got %d/%d", len(key), len(iv))
	}

	again, againIV := evpBytesToKey([]byte("secret"), salt, 32, 16)
	if !bytes.Equal(key, again) || !bytes.Equal(iv, againIV) {
		t.Errorf("Expected derivation to be deterministic")
	}

	shortKey, _ := evpBytesToKey([]byte("secret"), salt, 16, 0)
	if !bytes.Equal(shortKey, key[:16]) {
		t.Errorf("Expected shorter derivations to be a prefix of longer ones")
	}
}

func TestSaltedFormatHeader(t *testing.T) {
	ciphertext, err := Encrypt("hello", "key", TripleDES)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		t.Fatalf("Ciphertext is not base64: %v", err)
	}

	if !bytes.HasPrefix(raw, []byte(saltedMagic)) {
		t.Errorf("Expected %q prefix, got %q", saltedMagic, raw[:8])
	}

	// "hello" pads to a single 8-byte DES block.
	if len(raw) != len(saltedMagic)+saltSize+8 {
		t.Errorf("Unexpected ciphertext length %d", len(raw))
	}
}

func TestPKCS7(t *testing.T) {
	for n := 0; n <= 32; n++ {
		data := bytes.Repeat([]byte{'x'}, n)
		padded := pkcs7Pad(data, 16)
		if len(padded)%16 != 0 || len(padded) <= n {
			t.Fatalf("Bad padded length %d for input %d", len(padded), n)
		}

		unpadded, err := pkcs7Unpad(padded, 16)
		if err != nil {
			t.Fatalf("Unpad failed for input %d: %v", n, err)
		}
		if !bytes.Equal(unpadded, data) {
			t.Errorf("Round trip mismatch for input %d", n)
		}
	}
}

func TestPKCS7UnpadRejectsInvalid(t *testing.T) {
	tests := map[string][]byte{
		"Empty":        {},
		"NotAligned":   bytes.Repeat([]byte{1}, 15),
		"ZeroPad":      append(bytes.Repeat([]byte{'a'}, 15), 0),
		"TooLarge":     append(bytes.Repeat([]byte{'a'}, 15), 17),
		"Inconsistent": append(bytes.Repeat([]byte{'a'}, 13), 2, 3, 3),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := pkcs7Unpad(data, 16); err == nil {
				t.Errorf("Expected error for %v", data)
			}
		})
	}
}
