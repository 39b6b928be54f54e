package ciphers

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 10000
	pbkdf2SaltSize   = 16
	aes256KeySize    = 32
)

// pbkdf2Cipher is AES-256-CBC with explicit PKCS#7 padding.
// Output is base64(salt || iv || body).
type pbkdf2Cipher struct {
	iterations int
}

func (c pbkdf2Cipher) Encrypt(plaintext []byte, passphrase string) (string, error) {
	header := make([]byte, pbkdf2SaltSize+aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, header); err != nil {
		return "", fmt.Errorf("generating salt and iv: %w", err)
	}
	salt, iv := header[:pbkdf2SaltSize], header[pbkdf2SaltSize:]

	body, err := cbcTransform{newBlock: aes.NewCipher}.seal(c.deriveKey(passphrase, salt), iv, plaintext)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(append(header, body...)), nil
}

func (c pbkdf2Cipher) Decrypt(ciphertext string, passphrase string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}

	headerLen := pbkdf2SaltSize + aes.BlockSize
	if len(raw) < headerLen+aes.BlockSize {
		return nil, fmt.Errorf("ciphertext too short: %d bytes", len(raw))
	}
	salt, iv := raw[:pbkdf2SaltSize], raw[pbkdf2SaltSize:headerLen]

	return cbcTransform{newBlock: aes.NewCipher}.open(c.deriveKey(passphrase, salt), iv, raw[headerLen:])
}

func (c pbkdf2Cipher) deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, c.iterations, aes256KeySize, sha256.New)
}
