// Package secrets encrypts and decrypts environment variable stores.
//
// A store is a single text file holding one envelope (see package envelope).
// The payload is a JSON object of variable names to string values,
// encrypted with one of the algorithms from package ciphers.
//
// # Key Resolution
//
// The data key is chosen in this order:
//
//  1. An explicit key passed by the caller
//  2. The trimmed contents of the key file, when it exists and is not blank
//  3. The default key
//
// The key file is read again on every resolution so edits are picked up
// without restarting. With an empty default key resolution is strict and
// fails with ErrKeyNotFound. The built-in default, InsecureDefaultKey, is
// public; stores encrypted with it are obfuscated, not protected.
//
// # Algorithm Resolution
//
// Stores written by this package are always tagged, so the algorithm used
// at encryption time is recovered on decryption and wins over whatever the
// caller asks for. The caller's algorithm only matters for untagged legacy
// stores.
//
// # Files
//
// Store files are written with 0644 permissions and key files with 0600.
// There is no locking; concurrent writers to the same path race and the
// last write wins.
package secrets
