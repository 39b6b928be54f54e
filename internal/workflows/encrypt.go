package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/envstore/internal/audit"
	"github.com/PolarWolf314/envstore/internal/ciphers"
	"github.com/PolarWolf314/envstore/internal/dotenv"
	kerrors "github.com/PolarWolf314/envstore/internal/errors"
	"github.com/PolarWolf314/envstore/internal/secrets"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	Project *Project
	Keys    KeyOptions

	// StorePath overrides the configured store file.
	StorePath string

	// Algorithm overrides the configured algorithm.
	Algorithm string

	// Assignments are KEY=VALUE pairs. They win over the env file.
	Assignments []string

	// EnvFile is a dotenv file to read. It must exist when set.
	EnvFile string

	// EnvContent is dotenv content read elsewhere, such as stdin.
	// It replaces EnvFile when non-nil.
	EnvContent []byte
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	StorePath string

	// Variables are the encrypted variable names, sorted.
	Variables []string

	Algorithm ciphers.Algorithm

	// UnknownAlgorithm is set when the requested algorithm was not
	// recognized and the default was used instead.
	UnknownAlgorithm string

	Key secrets.Key

	// Sources lists where variables came from, for display.
	Sources []string
}

// Encrypt collects variables and writes them to the store as a tagged envelope.
//
// When no assignments, env file or content are given, the configured env file
// is read if it exists.
//
// Returns ErrNoVariables when there is nothing to encrypt.
// Returns ErrInvalidVariable for a malformed assignment or env file.
// Returns ErrKeyNotFound when Keys.Strict is set and no key is available.
func Encrypt(ctx context.Context, opts EncryptOptions) (*EncryptResult, error) {
	project := opts.Project

	vars, sources, err := collectVariables(project, opts)
	if err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return nil, kerrors.ErrNoVariables
	}

	storeOpts := project.storeOptions(opts.Keys, opts.StorePath, opts.Algorithm)
	store := secrets.NewStore(storeOpts)

	key, err := store.EncryptionKey()
	if err != nil {
		return nil, err
	}
	// The result reports the key that was actually used.
	store.UseKey(key.Value)

	if err := store.Save(vars, ""); err != nil {
		return nil, err
	}

	result := &EncryptResult{
		StorePath: storeOpts.StorePath,
		Variables: dotenv.Keys(vars),
		Algorithm: store.Algorithm(),
		Key:       key,
		Sources:   sources,
	}
	if name, known := project.algorithmKnown(opts.Algorithm); !known {
		result.UnknownAlgorithm = name
	}

	entry := audit.NewEntry(audit.OpEncrypt)
	entry.Files = []string{result.StorePath}
	entry.Variables = result.Variables
	entry.Algorithm = string(result.Algorithm)
	entry.KeySource = string(key.Source)
	audit.Log(project.auditLogPath(), entry)

	return result, nil
}

func collectVariables(project *Project, opts EncryptOptions) (map[string]string, []string, error) {
	var fileVars map[string]string
	var sources []string

	switch {
	case opts.EnvContent != nil:
		parsed, err := dotenv.Parse(string(opts.EnvContent))
		if err != nil {
			return nil, nil, fmt.Errorf("parsing env input: %w", err)
		}
		fileVars = parsed
		sources = append(sources, "stdin")

	case opts.EnvFile != "":
		parsed, err := readEnvFile(project.Path(opts.EnvFile), true)
		if err != nil {
			return nil, nil, err
		}
		fileVars = parsed
		sources = append(sources, opts.EnvFile)

	case len(opts.Assignments) == 0:
		parsed, err := readEnvFile(project.Path(project.Config.EnvPath), false)
		if err != nil {
			return nil, nil, err
		}
		if parsed != nil {
			fileVars = parsed
			sources = append(sources, project.Config.EnvPath)
		}
	}

	assigned, err := dotenv.ParseAssignments(opts.Assignments)
	if err != nil {
		return nil, nil, err
	}
	if len(assigned) > 0 {
		sources = append(sources, "--env")
	}

	return dotenv.Merge(fileVars, assigned), sources, nil
}

// readEnvFile parses a dotenv file. A missing file is an error only when required.
func readEnvFile(path string, required bool) (map[string]string, error) {
	content, found, err := secrets.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !found {
		if required {
			return nil, fmt.Errorf("%w: %w: %s", kerrors.ErrIO, kerrors.ErrFileNotFound, path)
		}
		return nil, nil
	}

	vars, err := dotenv.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return vars, nil
}
