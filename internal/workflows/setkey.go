package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/envstore/internal/audit"
	kerrors "github.com/PolarWolf314/envstore/internal/errors"
	"github.com/PolarWolf314/envstore/internal/secrets"
)

// SetKeyOptions configures the set-key workflow.
type SetKeyOptions struct {
	Project *Project

	// Key is written to the key file. Ignored when Generate is set.
	Key string

	// KeyFile overrides the configured key file.
	KeyFile string

	// Generate writes a random key instead of Key.
	Generate bool

	// Force overwrites an existing key file.
	Force bool
}

// SetKeyResult contains the outcome of a set-key operation.
type SetKeyResult struct {
	KeyFile   string
	Generated bool
	Replaced  bool
}

// KeyFilePath returns the key file set-key would write.
func KeyFilePath(project *Project, keyFile string) string {
	return project.Path(firstNonEmpty(keyFile, project.Config.KeyFilePath))
}

// KeyFileExists reports whether the key file set-key would write exists.
func KeyFileExists(project *Project, keyFile string) (bool, error) {
	_, found, err := secrets.ReadFile(KeyFilePath(project, keyFile))
	return found, err
}

// SetKey writes the data key to the key file with owner-only permissions.
// Existing stores are not re-encrypted.
//
// Returns ErrEmptyKey when no key is given and Generate is false.
// Returns ErrKeyFileExists when the key file exists and Force is false.
func SetKey(ctx context.Context, opts SetKeyOptions) (*SetKeyResult, error) {
	keyFile := KeyFilePath(opts.Project, opts.KeyFile)

	key := strings.TrimSpace(opts.Key)
	if opts.Generate {
		generated, err := secrets.GenerateKey()
		if err != nil {
			return nil, err
		}
		key = generated
	}
	if key == "" {
		return nil, kerrors.ErrEmptyKey
	}

	exists, err := KeyFileExists(opts.Project, opts.KeyFile)
	if err != nil {
		return nil, err
	}
	if exists && !opts.Force {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyFileExists, keyFile)
	}

	store := secrets.NewStore(secrets.Options{KeyFilePath: keyFile})
	if err := store.SetEncryptionKey(key); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(audit.OpSetKey)
	entry.KeyFile = keyFile
	audit.Log(opts.Project.auditLogPath(), entry)

	return &SetKeyResult{
		KeyFile:   keyFile,
		Generated: opts.Generate,
		Replaced:  exists,
	}, nil
}
