package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envstore/internal/audit"
	"github.com/PolarWolf314/envstore/internal/ciphers"
	"github.com/PolarWolf314/envstore/internal/dotenv"
	"github.com/PolarWolf314/envstore/internal/secrets"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	Project *Project
	Keys    KeyOptions

	// StorePath overrides the configured store file.
	StorePath string

	// Algorithm is used only for untagged stores.
	Algorithm string

	// OutputPath overrides the configured decrypted file. When both are
	// empty the variables are returned but not written.
	OutputPath string
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	StorePath string

	// OutputPath is the dotenv file written, or empty when nothing was written.
	OutputPath string

	Vars map[string]string

	// Algorithm is the cipher that opened the store.
	Algorithm ciphers.Algorithm

	// Tagged is false for legacy stores, where Algorithm came from options.
	Tagged bool

	Key secrets.Key
}

// Decrypt opens the store and optionally writes the variables as a dotenv file
// with owner-only permissions.
//
// Returns ErrIO and ErrFileNotFound when the store does not exist.
// Returns ErrDecryptFailed or ErrInvalidPayload when the key is wrong.
func Decrypt(ctx context.Context, opts DecryptOptions) (*DecryptResult, error) {
	project := opts.Project

	storeOpts := project.storeOptions(opts.Keys, opts.StorePath, opts.Algorithm)
	store := secrets.NewStore(storeOpts)

	key, err := store.EncryptionKey()
	if err != nil {
		return nil, err
	}
	// The result reports the key that was actually used.
	store.UseKey(key.Value)

	decrypted, err := store.Load("")
	if err != nil {
		return nil, err
	}

	result := &DecryptResult{
		StorePath: storeOpts.StorePath,
		Vars:      decrypted.Vars,
		Algorithm: decrypted.Algorithm,
		Tagged:    decrypted.Tagged,
		Key:       key,
	}

	if outputPath := project.Path(firstNonEmpty(opts.OutputPath, project.Config.DecryptedPath)); outputPath != "" {
		content, err := dotenv.Marshal(decrypted.Vars)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", outputPath, err)
		}
		if err := secrets.WriteFile(outputPath, content, secrets.KeyFileMode); err != nil {
			return nil, err
		}
		result.OutputPath = outputPath
	}

	entry := audit.NewEntry(audit.OpDecrypt)
	entry.Files = []string{result.StorePath}
	entry.Algorithm = string(result.Algorithm)
	entry.Tagged = audit.Bool(result.Tagged)
	entry.KeySource = string(key.Source)
	audit.Log(project.auditLogPath(), entry)

	return result, nil
}
