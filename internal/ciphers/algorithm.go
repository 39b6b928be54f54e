package ciphers

import (
	"crypto/aes"
	"crypto/des"
	"fmt"
	"strings"
	"unicode/utf8"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"
)

// Algorithm names a registered cipher.
type Algorithm string

const (
	// AES uses AES-256-CBC in OpenSSL salted format.
	AES Algorithm = "aes"
	// AES256CBC pins AES-256-CBC with PKCS#7 padding and PBKDF2 key derivation.
	AES256CBC Algorithm = "aes-256-cbc"
	// TripleDES uses 3DES-EDE-CBC in OpenSSL salted format.
	TripleDES Algorithm = "tripledes"
	// Rabbit uses the Rabbit stream cipher in OpenSSL salted format.
	Rabbit Algorithm = "rabbit"
	// RC4 uses the RC4 stream cipher in OpenSSL salted format.
	RC4 Algorithm = "rc4"
)

// Default is the algorithm used when none is given or the name is unknown.
const Default = AES

// Cipher is implemented by every registered algorithm.
type Cipher interface {
	// Encrypt returns base64 text for plaintext under passphrase.
	Encrypt(plaintext []byte, passphrase string) (string, error)
	// Decrypt reverses Encrypt. It does not validate the plaintext.
	Decrypt(ciphertext string, passphrase string) ([]byte, error)
}

// order is the display order of the registry.
var order = []Algorithm{AES, AES256CBC, TripleDES, Rabbit, RC4}

var registry = map[Algorithm]Cipher{
	AES: saltedCipher{
		keyLen:    32,
		ivLen:     aes.BlockSize,
		transform: cbcTransform{newBlock: aes.NewCipher},
	},
	AES256CBC: pbkdf2Cipher{iterations: pbkdf2Iterations},
	TripleDES: saltedCipher{
		keyLen:    24,
		ivLen:     des.BlockSize,
		transform: cbcTransform{newBlock: des.NewTripleDESCipher},
	},
	Rabbit: saltedCipher{
		keyLen:    rabbitKeySize,
		ivLen:     rabbitIVSize,
		transform: streamTransform{newStream: newRabbit},
	},
	RC4: saltedCipher{
		keyLen:    32,
		ivLen:     0,
		transform: streamTransform{newStream: newRC4},
	},
}

// Lookup returns the algorithm for name and whether it is recognized.
// Names are matched case-insensitively. Unknown names return Default, false.
func Lookup(name string) (Algorithm, bool) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := registry[alg]; ok {
		return alg, true
	}
	return Default, false
}

// Resolve returns the algorithm for name, mapping unknown names to Default.
func Resolve(name string) Algorithm {
	alg, _ := Lookup(name)
	return alg
}

// Names returns the recognized algorithm names in display order.
func Names() []string {
	names := make([]string, len(order))
	for i, alg := range order {
		names[i] = string(alg)
	}
	return names
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	return string(a)
}

// For returns the cipher registered for alg, or the Default cipher.
func For(alg Algorithm) Cipher {
	return registry[Resolve(string(alg))]
}

// Encrypt encrypts plaintext with key using alg.
// Unknown algorithms fall back to Default.
func Encrypt(plaintext, key string, alg Algorithm) (string, error) {
	if key == "" {
		return "", kerrors.ErrEmptyKey
	}

	resolved := Resolve(string(alg))
	ciphertext, err := registry[resolved].Encrypt([]byte(plaintext), key)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", kerrors.ErrEncryptFailed, resolved, err)
	}

	return ciphertext, nil
}

// Decrypt decrypts ciphertext with key using alg.
// Unknown algorithms fall back to Default. Output that is not valid UTF-8 is
// reported as ErrDecryptFailed.
func Decrypt(ciphertext, key string, alg Algorithm) (string, error) {
	if key == "" {
		return "", kerrors.ErrEmptyKey
	}

	resolved := Resolve(string(alg))
	plaintext, err := registry[resolved].Decrypt(ciphertext, key)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", kerrors.ErrDecryptFailed, resolved, err)
	}

	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: %s: malformed UTF-8 data", kerrors.ErrDecryptFailed, resolved)
	}

	return string(plaintext), nil
}
