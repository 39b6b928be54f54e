package ciphers

import (
	"bytes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/rc4"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	saltedMagic = "Salted__"
	saltSize    = 8
)

// transform seals and opens a body once key and IV are derived.
type transform interface {
	seal(key, iv, plaintext []byte) ([]byte, error)
	open(key, iv, body []byte) ([]byte, error)
}

// saltedCipher writes the OpenSSL "Salted__" format with EVP_BytesToKey(MD5).
type saltedCipher struct {
	keyLen    int
	ivLen     int
	transform transform
}

func (c saltedCipher) Encrypt(plaintext []byte, passphrase string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key, iv := evpBytesToKey([]byte(passphrase), salt, c.keyLen, c.ivLen)
	body, err := c.transform.seal(key, iv, plaintext)
	if err != nil {
		return "", err
	}

	raw := make([]byte, 0, len(saltedMagic)+saltSize+len(body))
	raw = append(raw, saltedMagic...)
	raw = append(raw, salt...)
	raw = append(raw, body...)

	return base64.StdEncoding.EncodeToString(raw), nil
}

func (c saltedCipher) Decrypt(ciphertext string, passphrase string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}

	header := len(saltedMagic) + saltSize
	if len(raw) < header || !bytes.Equal(raw[:len(saltedMagic)], []byte(saltedMagic)) {
		return nil, errors.New("missing Salted__ header")
	}

	salt := raw[len(saltedMagic):header]
	key, iv := evpBytesToKey([]byte(passphrase), salt, c.keyLen, c.ivLen)

	return c.transform.open(key, iv, raw[header:])
}

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and one iteration.
func evpBytesToKey(passphrase, salt []byte, keyLen, ivLen int) (key, iv []byte) {
	var derived, prev []byte
	for len(derived) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}

	return derived[:keyLen], derived[keyLen : keyLen+ivLen]
}

// cbcTransform is a block cipher in CBC mode with PKCS#7 padding.
type cbcTransform struct {
	newBlock func(key []byte) (cipher.Block, error)
}

func (t cbcTransform) seal(key, iv, plaintext []byte) ([]byte, error) {
	block, err := t.newBlock(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return out, nil
}

func (t cbcTransform) open(key, iv, body []byte) ([]byte, error) {
	block, err := t.newBlock(key)
	if err != nil {
		return nil, err
	}

	size := block.BlockSize()
	if len(body) == 0 || len(body)%size != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(body))
	}

	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)

	return pkcs7Unpad(out, size)
}

// streamTransform XORs the body with a keystream.
type streamTransform struct {
	newStream func(key, iv []byte) (cipher.Stream, error)
}

func (t streamTransform) seal(key, iv, plaintext []byte) ([]byte, error) {
	stream, err := t.newStream(key, iv)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(plaintext))
	stream.XORKeyStream(out, plaintext)

	return out, nil
}

func (t streamTransform) open(key, iv, body []byte) ([]byte, error) {
	return t.seal(key, iv, body)
}

func newRC4(key, _ []byte) (cipher.Stream, error) {
	return rc4.NewCipher(key)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data), len(data)+n)
	copy(padded, data)

	return append(padded, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("invalid padding")
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}

	return data[:len(data)-n], nil
}
