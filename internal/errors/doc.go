// Package errors provides typed error values for envstore.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - I/O errors: ErrIO, ErrFileNotFound
//   - Crypto errors: ErrEncryptFailed, ErrDecryptFailed, ErrInvalidPayload, ErrEmptyKey
//   - Key errors: ErrKeyNotFound
//   - Input errors: ErrNoVariables, ErrInvalidVariable, ErrInvalidConfig,
//     ErrUnsupportedFormat, ErrAlreadyInitialized, ErrKeyFileExists,
//     ErrInvalidDateFormat, ErrAuditDisabled
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: reading %s: %v", errors.ErrIO, path, err)
//
// A missing file carries both I/O sentinels:
//
//	return fmt.Errorf("%w: %w: %s", errors.ErrIO, errors.ErrFileNotFound, path)
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, kerrors.ErrInvalidPayload) {
//	    // Suggest checking the key
//	}
package errors
