// Package configs loads and saves the project configuration file.
//
// The file is named env-store.config with a .json, .toml, .yaml or .yml
// extension, and the extension picks the encoding. Every field is optional:
//
//   - env-filepath: plaintext env file read by encrypt (default .env)
//   - store-file-path: encrypted store (default .env.store)
//   - decrypted-file-path: where decrypt writes; empty prints to stdout
//   - key-file-path: file holding the data key (default .env.store.key)
//   - algorithm: cipher for new stores (default aes)
//   - audit-log-path: JSON lines audit trail; empty disables it
//
// # Legacy Names
//
// Older configs used store-filepath or file for the store path,
// output-filepath or output for the decrypted path, and envFile for the
// env path. They are still read. When both a legacy and a current name are
// set, the current name wins. Save always writes current names.
package configs
