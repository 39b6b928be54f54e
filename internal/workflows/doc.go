// Package workflows provides the business logic behind each envstore command.
//
// The cmd package parses flags, shows spinners and formats output. Workflows
// do everything else: resolve paths against the project, pick the key and
// algorithm, read and write stores, and record audit entries.
//
// # Project Resolution
//
// LoadProject reads the config file given with --config, or discovers
// env-store.config.{json,toml,yaml,yml} in the project directory. Relative
// paths in the config are resolved against that directory. Flags always win
// over config values.
//
// # Available Workflows
//
//   - Init: writes a config file, generates a key file, updates .gitignore
//   - Encrypt: collects variables from flags and env files into the store
//   - Decrypt: opens the store and optionally writes a dotenv file
//   - List: opens every store matching a set of globs
//   - SetKey: writes or generates the key file
//   - Log: reads and filters the audit log
//   - Doctor: runs read-only health checks
//
// # Error Handling
//
// Workflows return sentinel errors from the internal/errors package so the
// CLI can show a helpful message without string matching:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, kerrors.ErrInvalidPayload) {
//	    // Suggest checking the key
//	}
//
// Unlike the core packages, a few workflows report soft problems in their
// result instead of failing, such as EncryptResult.UnknownAlgorithm and
// StoreListing.Err.
package workflows
