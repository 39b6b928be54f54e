package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PolarWolf314/envstore/internal/ciphers"
	"github.com/PolarWolf314/envstore/internal/envelope"
	kerrors "github.com/PolarWolf314/envstore/internal/errors"
)

// Decrypted is the result of opening an envelope.
type Decrypted struct {
	// Vars holds the environment variables.
	Vars map[string]string

	// Algorithm is the cipher that decrypted the payload.
	Algorithm ciphers.Algorithm

	// Tagged is true when Algorithm came from the envelope's own tag.
	Tagged bool
}

// EncryptEnv serializes vars to JSON, encrypts it with key and alg, and
// returns a tagged envelope. Unknown algorithms fall back to the default.
func EncryptEnv(vars map[string]string, key string, alg ciphers.Algorithm) (string, error) {
	if err := ValidateVars(vars); err != nil {
		return "", err
	}

	payload, err := marshalVars(vars)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	resolved := ciphers.Resolve(string(alg))
	ciphertext, err := ciphers.Encrypt(payload, key, resolved)
	if err != nil {
		return "", err
	}

	return envelope.Wrap(ciphertext, resolved)
}

// DecryptEnv opens an envelope with key. The algorithm named by the
// envelope's tag wins; fallback is used only for untagged envelopes.
//
// Returns ErrDecryptFailed when the cipher rejects the payload and
// ErrInvalidPayload when the plaintext is not a JSON object of strings.
func DecryptEnv(env, key string, fallback ciphers.Algorithm) (*Decrypted, error) {
	payload, alg, tagged := envelope.Unwrap(strings.TrimSpace(env))
	if !tagged {
		alg = ciphers.Resolve(string(fallback))
	}

	plaintext, err := ciphers.Decrypt(payload, key, alg)
	if err != nil {
		return nil, err
	}

	vars, err := unmarshalVars(plaintext)
	if err != nil {
		return nil, err
	}

	return &Decrypted{Vars: vars, Algorithm: alg, Tagged: tagged}, nil
}

// ValidateVars checks that every variable has a non-empty name.
func ValidateVars(vars map[string]string) error {
	for name := range vars {
		if name == "" {
			return fmt.Errorf("%w: variable name is empty", kerrors.ErrInvalidVariable)
		}
	}
	return nil
}

// marshalVars encodes vars as a JSON object with sorted keys.
func marshalVars(vars map[string]string) (string, error) {
	if vars == nil {
		vars = map[string]string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(vars); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func unmarshalVars(plaintext string) (map[string]string, error) {
	var vars map[string]string
	if err := json.Unmarshal([]byte(plaintext), &vars); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPayload, err)
	}

	if vars == nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object", kerrors.ErrInvalidPayload)
	}

	if err := ValidateVars(vars); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidPayload, err)
	}

	return vars, nil
}
