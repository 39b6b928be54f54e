package workflows

import (
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/envstore/internal/ciphers"
	"github.com/PolarWolf314/envstore/internal/configs"
	"github.com/PolarWolf314/envstore/internal/secrets"
)

// Project is the configuration every workflow runs against.
type Project struct {
	// Dir is the directory relative paths are resolved against.
	Dir string

	// Config has defaults filled in.
	Config *configs.StoreConfig

	// ConfigPath is the file Config was read from, or empty for defaults.
	ConfigPath string
}

// LoadProject reads configPath, or discovers a config file in dir when
// configPath is empty. Without a config file the defaults are used.
func LoadProject(dir, configPath string) (*Project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	if configPath != "" {
		if configPath, err = secrets.AbsolutePath(configPath, absDir); err != nil {
			return nil, err
		}
	}

	config, found, err := configs.LoadOrDefault(configPath, absDir)
	if err != nil {
		return nil, err
	}

	project := &Project{Dir: absDir, Config: config}
	if found {
		if configPath == "" {
			configPath, _ = configs.Discover(absDir)
		}
		project.ConfigPath = configPath
	}

	return project, nil
}

// Path resolves p against the project directory. Empty stays empty.
func (p *Project) Path(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}

// KeyOptions are the key flags shared by the store workflows.
type KeyOptions struct {
	// Key is an explicit data key.
	Key string

	// KeyFile overrides the configured key file.
	KeyFile string

	// Strict disables the insecure default key.
	Strict bool
}

// storeOptions builds store options from flags, falling back to config.
func (p *Project) storeOptions(keys KeyOptions, storePath, algorithm string) secrets.Options {
	opts := secrets.Options{
		Key:         keys.Key,
		KeyFilePath: p.Path(firstNonEmpty(keys.KeyFile, p.Config.KeyFilePath)),
		StorePath:   p.Path(firstNonEmpty(storePath, p.Config.StorePath)),
		Algorithm:   ciphers.Resolve(firstNonEmpty(algorithm, p.Config.Algorithm)),
	}
	if !keys.Strict {
		opts.DefaultKey = secrets.InsecureDefaultKey
	}
	return opts
}

// algorithmKnown reports whether the algorithm chosen by flag or config
// names a registered cipher. Unknown names fall back to the default.
func (p *Project) algorithmKnown(algorithm string) (name string, known bool) {
	name = firstNonEmpty(algorithm, p.Config.Algorithm)
	_, known = ciphers.Lookup(name)
	return name, known
}

func (p *Project) auditLogPath() string {
	return p.Path(p.Config.AuditLogPath)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
