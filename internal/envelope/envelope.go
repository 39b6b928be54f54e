// Package envelope frames payload ciphertext with a self-describing
// algorithm tag so a reader does not need to know the cipher in advance.
//
// A tagged envelope is two base64 segments joined by a single '.':
//
//	<tag>.<payload>
//
// The tag is the JSON object {"alg":"<name>"} encrypted with the aes cipher
// under TrackingKey. The payload is the caller's ciphertext, produced with the
// named algorithm under the caller's data key.
//
// TrackingKey is a protocol constant, not a secret. Anyone with this source
// can read the tag; it only describes the format and hides nothing.
//
// Envelopes written before tagging existed are a single ciphertext segment.
// Unwrap accepts both shapes and never fails: anything it cannot read as a
// tag is handed back untouched as payload.
package envelope

import (
	"encoding/json"
	"strings"

	"github.com/PolarWolf314/envstore/internal/ciphers"
)

// TrackingKey encrypts the algorithm tag. It must never change, or existing
// envelopes lose their tags.
const TrackingKey = "dotdotenv-store-algorithm-tracking-key"

// Delimiter separates the tag segment from the payload segment.
const Delimiter = "."

// tagAlgorithm is the cipher that protects the tag, whatever the payload uses.
const tagAlgorithm = ciphers.AES

// Tag names the algorithm of the payload it travels with.
type Tag struct {
	Alg string `json:"alg"`
}

// Wrap prefixes payload with an encrypted tag naming alg.
// Unrecognized algorithms are recorded as the default algorithm.
func Wrap(payload string, alg ciphers.Algorithm) (string, error) {
	data, err := json.Marshal(Tag{Alg: ciphers.Resolve(string(alg)).String()})
	if err != nil {
		return "", err
	}

	tag, err := ciphers.Encrypt(string(data), TrackingKey, tagAlgorithm)
	if err != nil {
		return "", err
	}

	return tag + Delimiter + payload, nil
}

// Unwrap splits an envelope into its payload and the algorithm named by its
// tag. tagged is false when the envelope has no readable tag; payload is then
// the whole envelope and alg is empty.
func Unwrap(envelope string) (payload string, alg ciphers.Algorithm, tagged bool) {
	head, rest, found := strings.Cut(envelope, Delimiter)
	if !found || head == "" || rest == "" {
		return envelope, "", false
	}

	tag, ok := readTag(head)
	if !ok {
		return envelope, "", false
	}

	return rest, tag, true
}

// readTag decrypts and parses a tag segment. It reports false for anything
// that is not a tag naming a recognized algorithm.
func readTag(segment string) (ciphers.Algorithm, bool) {
	plaintext, err := ciphers.Decrypt(segment, TrackingKey, tagAlgorithm)
	if err != nil {
		return "", false
	}

	var tag Tag
	if err := json.Unmarshal([]byte(plaintext), &tag); err != nil {
		return "", false
	}

	return ciphers.Lookup(tag.Alg)
}
