// Package ciphers is the registry of symmetric ciphers envstore can use for
// its payloads.
//
// Every algorithm is selected by name and exposes the same contract:
// Encrypt turns plaintext and a passphrase into printable text, and Decrypt
// reverses it. The encoded output is always standard base64, so it never
// contains the '.' envelope delimiter or a newline.
//
// # Algorithms
//
//	aes          AES-256-CBC in OpenSSL "Salted__" format (default)
//	aes-256-cbc  AES-256-CBC, PKCS#7, PBKDF2-HMAC-SHA256 key derivation
//	tripledes    3DES-EDE-CBC in OpenSSL "Salted__" format
//	rabbit       Rabbit stream cipher (RFC 4503) in OpenSSL "Salted__" format
//	rc4          RC4 stream cipher in OpenSSL "Salted__" format
//
// The OpenSSL salted format is base64("Salted__" || salt || body) where the
// key and IV come from EVP_BytesToKey with MD5. Files written by older
// versions of the tool use this format with AES, which is why aes keeps it.
//
// # Unknown Names
//
// Lookup reports whether a name is recognized. Resolve and the package level
// Encrypt and Decrypt map any unrecognized name to aes instead of failing:
//
//	alg := ciphers.Resolve("blowfish") // ciphers.AES
//
// # Wrong Keys
//
// Block ciphers usually reject a wrong key through a padding check. Stream
// ciphers cannot tell: they return garbage, and callers must detect it by
// parsing the plaintext. Decrypt does reject output that is not valid UTF-8.
package ciphers
