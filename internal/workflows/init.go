package workflows

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/envstore/internal/audit"
	"github.com/PolarWolf314/envstore/internal/ciphers"
	"github.com/PolarWolf314/envstore/internal/configs"
	kerrors "github.com/PolarWolf314/envstore/internal/errors"
	"github.com/PolarWolf314/envstore/internal/secrets"
	"github.com/PolarWolf314/envstore/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Dir is the project directory.
	Dir string

	// Format of the config file. Defaults to json.
	Format string

	// Algorithm for new stores. Defaults to aes.
	Algorithm string

	// AuditLogPath enables the audit log when set.
	AuditLogPath string

	// Force replaces an existing config file.
	Force bool

	// SkipGitignore leaves .gitignore untouched.
	SkipGitignore bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	ConfigPath string
	KeyFile    string

	// KeyGenerated is false when an existing key file was kept.
	KeyGenerated bool

	// Ignored lists the .gitignore entries that were added.
	Ignored []string

	// GitignorePath is the .gitignore that was checked, if any.
	GitignorePath string
}

// Init writes a config file with defaults, creates a random key file unless
// one exists, and makes sure the key file and plaintext env files are
// ignored by git.
//
// Returns ErrAlreadyInitialized when a config file exists and Force is false.
// Returns ErrUnsupportedFormat for an unknown Format.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	format := configs.FormatJSON
	if opts.Format != "" {
		if format, err = configs.ParseFormat(opts.Format); err != nil {
			return nil, err
		}
	}

	if existing, ok := configs.Discover(dir); ok && !opts.Force {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrAlreadyInitialized, existing)
	}

	config := configs.Default()
	config.AuditLogPath = opts.AuditLogPath
	if opts.Algorithm != "" {
		alg, ok := ciphers.Lookup(opts.Algorithm)
		if !ok {
			return nil, fmt.Errorf("%w: unknown algorithm %q, expected one of %v", kerrors.ErrInvalidConfig, opts.Algorithm, ciphers.Names())
		}
		config.Algorithm = string(alg)
	}

	project := &Project{Dir: dir, Config: config}
	result := &InitResult{
		ConfigPath: filepath.Join(dir, configs.FileName(format)),
		KeyFile:    project.Path(config.KeyFilePath),
	}

	if err := configs.Save(result.ConfigPath, config); err != nil {
		return nil, err
	}
	project.ConfigPath = result.ConfigPath

	_, keyExists, err := secrets.ReadFile(result.KeyFile)
	if err != nil {
		return nil, err
	}
	if !keyExists {
		if _, err := SetKey(ctx, SetKeyOptions{Project: project, Generate: true}); err != nil {
			return nil, err
		}
		result.KeyGenerated = true
	}

	if !opts.SkipGitignore {
		if err := ignoreSecrets(project, result); err != nil {
			return nil, err
		}
	}

	entry := audit.NewEntry(audit.OpInit)
	entry.Files = []string{result.ConfigPath}
	entry.KeyFile = result.KeyFile
	entry.Algorithm = config.Algorithm
	audit.Log(project.auditLogPath(), entry)

	return result, nil
}

// ignoreSecrets adds the key file and plaintext env files to the .gitignore
// at the repository root, or in the project directory outside a repository.
func ignoreSecrets(project *Project, result *InitResult) error {
	root, ok := utils.RepositoryRoot(project.Dir)
	if !ok {
		root = project.Dir
	}

	candidates := []string{result.KeyFile, project.Path(project.Config.EnvPath)}
	if project.Config.DecryptedPath != "" {
		candidates = append(candidates, project.Path(project.Config.DecryptedPath))
	}

	var paths []string
	for _, c := range candidates {
		rel, err := filepath.Rel(root, c)
		if err != nil {
			continue
		}
		paths = append(paths, rel)
	}

	added, err := utils.EnsureIgnored(root, paths)
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}

	result.Ignored = added
	result.GitignorePath = filepath.Join(root, ".gitignore")
	return nil
}
