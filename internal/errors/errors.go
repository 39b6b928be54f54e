package errors

import "errors"

// I/O errors indicate a file could not be read or written.
var (
	// ErrIO indicates an underlying file system operation failed.
	ErrIO = errors.New("file operation failed")

	// ErrFileNotFound indicates a required file does not exist.
	// It is always reported together with ErrIO.
	ErrFileNotFound = errors.New("file not found")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrEncryptFailed indicates the payload could not be encrypted.
	ErrEncryptFailed = errors.New("failed to encrypt data")

	// ErrDecryptFailed indicates the cipher rejected the ciphertext or produced invalid text.
	ErrDecryptFailed = errors.New("failed to decrypt data")

	// ErrInvalidPayload indicates the decrypted payload is not a JSON object of strings.
	// This usually means the key is wrong or the store file is corrupted.
	ErrInvalidPayload = errors.New("decrypted payload is not valid JSON")

	// ErrEmptyKey indicates an empty passphrase was handed to a cipher.
	ErrEmptyKey = errors.New("encryption key is empty")
)

// Key errors indicate the data key could not be resolved.
var (
	// ErrKeyNotFound indicates neither an explicit key nor a key file was available
	// and no default key is configured.
	ErrKeyNotFound = errors.New("encryption key not found")
)

// Input errors indicate invalid user input or configuration.
var (
	// ErrNoVariables indicates there is nothing to encrypt.
	ErrNoVariables = errors.New("no environment variables provided")

	// ErrInvalidVariable indicates a variable name or KEY=VALUE pair is malformed.
	ErrInvalidVariable = errors.New("invalid environment variable")

	// ErrInvalidConfig indicates the config file is malformed.
	ErrInvalidConfig = errors.New("configuration is invalid")

	// ErrUnsupportedFormat indicates a config format that cannot be read or written.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrAlreadyInitialized indicates init found existing files and --force was not given.
	ErrAlreadyInitialized = errors.New("env store has already been initialized")

	// ErrKeyFileExists indicates set-key would overwrite a key file without --force.
	ErrKeyFileExists = errors.New("key file already exists")

	// ErrInvalidDateFormat indicates a log filter date is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrAuditDisabled indicates the log was requested but audit-log-path is not set.
	ErrAuditDisabled = errors.New("audit log is not enabled")
)
