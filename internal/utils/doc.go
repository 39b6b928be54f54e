// Package utils provides shared helpers for envstore commands.
//
// # Terminal Utilities
//
//   - ReadSecret: hidden prompt for a key
//   - IsTerminal, IsOutputTerminal, IsErrorTerminal, IsInteractive: decide
//     whether to prompt or show a spinner
//
// # Git Utilities
//
//   - RepositoryRoot: finds the enclosing git work tree
//   - IsIgnored, EnsureIgnored: check and extend .gitignore so key files and
//     decrypted env files are never committed
//
// # Formatting
//
//   - FormatPaths, Plural
package utils
