package workflows

import (
	"context"

	"github.com/PolarWolf314/envstore/internal/audit"
	"github.com/PolarWolf314/envstore/internal/ciphers"
	"github.com/PolarWolf314/envstore/internal/secrets"
)

// ListOptions configures the list workflow.
type ListOptions struct {
	Project *Project
	Keys    KeyOptions

	// Patterns are store paths or globs. Empty means the configured store.
	Patterns []string

	// Algorithm is used only for untagged stores.
	Algorithm string
}

// StoreListing is the decrypted content of one store.
type StoreListing struct {
	Path      string
	Vars      map[string]string
	Algorithm ciphers.Algorithm
	Tagged    bool

	// Err is set when this store could not be opened. Other stores are
	// still listed.
	Err error
}

// ListResult contains the outcome of a list operation.
type ListResult struct {
	Stores []StoreListing
	Key    secrets.Key
}

// Failed returns the number of stores that could not be opened.
func (r *ListResult) Failed() int {
	n := 0
	for _, s := range r.Stores {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// List decrypts every store matching the patterns with the same key.
//
// Returns ErrFileNotFound when nothing matches. Per-store failures are
// reported in StoreListing.Err.
func List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	project := opts.Project

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{project.Config.StorePath}
	}

	files, err := secrets.ResolveStoreFiles(patterns, project.Dir)
	if err != nil {
		return nil, err
	}

	storeOpts := project.storeOptions(opts.Keys, "", opts.Algorithm)
	store := secrets.NewStore(storeOpts)

	key, err := store.EncryptionKey()
	if err != nil {
		return nil, err
	}
	// Resolve once so every store is opened with the same key.
	store.UseKey(key.Value)

	result := &ListResult{Key: key}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		listing := StoreListing{Path: file}
		decrypted, err := store.Load(file)
		if err != nil {
			listing.Err = err
		} else {
			listing.Vars = decrypted.Vars
			listing.Algorithm = decrypted.Algorithm
			listing.Tagged = decrypted.Tagged
		}
		result.Stores = append(result.Stores, listing)
	}

	entry := audit.NewEntry(audit.OpList)
	entry.Files = files
	entry.KeySource = string(key.Source)
	audit.Log(project.auditLogPath(), entry)

	return result, nil
}
