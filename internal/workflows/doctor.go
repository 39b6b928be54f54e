package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/envstore/internal/ciphers"
	"github.com/PolarWolf314/envstore/internal/secrets"
	"github.com/PolarWolf314/envstore/internal/utils"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	Project *Project
	Keys    KeyOptions
}

// Doctor runs health checks on the project setup. It never modifies files.
//
// The checks cover:
//   - Config file presence and algorithm
//   - Where the data key comes from
//   - Key file permissions
//   - Whether the key file and plaintext env files are ignored by git
//   - Whether the store opens with the resolved key and carries a tag
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	d := &doctor{project: opts.Project, keys: opts.Keys}

	checks := []func() CheckResult{
		d.checkConfig,
		d.checkAlgorithm,
		d.checkKeySource,
		d.checkKeyFilePermissions,
		d.checkGitignore,
		d.checkStore,
	}

	var results []CheckResult
	for _, check := range checks {
		results = append(results, check())
	}

	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     calculateDoctorSummary(results),
		Suggestions: suggestions,
	}, nil
}

type doctor struct {
	project *Project
	keys    KeyOptions
}

func (d *doctor) checkConfig() CheckResult {
	if d.project.ConfigPath == "" {
		return CheckResult{
			Name:       "Config file",
			Status:     CheckWarning,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'envstore init' to write a config file",
		}
	}
	return CheckResult{
		Name:    "Config file",
		Status:  CheckPass,
		Message: fmt.Sprintf("Loaded %s", d.relative(d.project.ConfigPath)),
	}
}

func (d *doctor) checkAlgorithm() CheckResult {
	name, known := d.project.algorithmKnown("")
	if !known {
		return CheckResult{
			Name:       "Algorithm",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Unknown algorithm %q, aes is used instead", name),
			Suggestion: "Set algorithm to one of " + strings.Join(ciphers.Names(), ", "),
		}
	}
	return CheckResult{Name: "Algorithm", Status: CheckPass, Message: name}
}

func (d *doctor) checkKeySource() CheckResult {
	opts := d.project.storeOptions(d.keys, "", "")
	key, err := secrets.ResolveKey(opts.Key, opts.KeyFilePath, opts.DefaultKey)
	if err != nil {
		return CheckResult{
			Name:       "Encryption key",
			Status:     CheckError,
			Message:    err.Error(),
			Suggestion: "Run 'envstore set-key --generate' to create a key file",
		}
	}

	switch key.Source {
	case secrets.KeySourceDefault:
		return CheckResult{
			Name:       "Encryption key",
			Status:     CheckWarning,
			Message:    "Using the built-in default key, stores are not protected",
			Suggestion: "Run 'envstore set-key --generate' to create a key file",
		}
	case secrets.KeySourceFile:
		return CheckResult{
			Name:    "Encryption key",
			Status:  CheckPass,
			Message: fmt.Sprintf("Read from %s", d.relative(key.Path)),
		}
	default:
		return CheckResult{Name: "Encryption key", Status: CheckPass, Message: "Given on the command line"}
	}
}

func (d *doctor) checkKeyFilePermissions() CheckResult {
	keyFile := KeyFilePath(d.project, d.keys.KeyFile)

	info, err := os.Stat(keyFile)
	if os.IsNotExist(err) {
		return CheckResult{Name: "Key file permissions", Status: CheckPass, Message: "No key file"}
	}
	if err != nil {
		return CheckResult{
			Name:       "Key file permissions",
			Status:     CheckError,
			Message:    fmt.Sprintf("Cannot stat key file: %v", err),
			Suggestion: "Check that the key file is accessible",
		}
	}

	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return CheckResult{
			Name:       "Key file permissions",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Key file is readable by others (%04o)", perm),
			Suggestion: fmt.Sprintf("Run 'chmod 600 %s'", d.relative(keyFile)),
		}
	}

	return CheckResult{Name: "Key file permissions", Status: CheckPass, Message: "Key file is owner-only"}
}

func (d *doctor) checkGitignore() CheckResult {
	root, ok := utils.RepositoryRoot(d.project.Dir)
	if !ok {
		return CheckResult{Name: "Git ignore", Status: CheckPass, Message: "Not a git repository"}
	}

	var exposed []string
	for _, path := range []string{KeyFilePath(d.project, d.keys.KeyFile), d.project.Path(d.project.Config.EnvPath)} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		ignored, err := utils.IsIgnored(root, rel)
		if err != nil {
			return CheckResult{
				Name:       "Git ignore",
				Status:     CheckError,
				Message:    err.Error(),
				Suggestion: "Check that the .gitignore file is accessible",
			}
		}
		if !ignored {
			exposed = append(exposed, rel)
		}
	}

	if len(exposed) > 0 {
		return CheckResult{
			Name:       "Git ignore",
			Status:     CheckError,
			Message:    fmt.Sprintf("Not ignored by git: %v", exposed),
			Suggestion: "Add the key file and plaintext env files to .gitignore",
		}
	}

	return CheckResult{Name: "Git ignore", Status: CheckPass, Message: "Secrets are ignored by git"}
}

func (d *doctor) checkStore() CheckResult {
	opts := d.project.storeOptions(d.keys, "", "")

	if _, err := os.Stat(opts.StorePath); os.IsNotExist(err) {
		return CheckResult{
			Name:       "Store",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%s does not exist", d.relative(opts.StorePath)),
			Suggestion: "Run 'envstore encrypt' to create the store",
		}
	}

	decrypted, err := secrets.NewStore(opts).Load("")
	if err != nil {
		return CheckResult{
			Name:       "Store",
			Status:     CheckError,
			Message:    fmt.Sprintf("Cannot open %s: %v", d.relative(opts.StorePath), err),
			Suggestion: "Check that the key matches the one used to encrypt the store",
		}
	}

	if !decrypted.Tagged {
		return CheckResult{
			Name:       "Store",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%s has no algorithm tag", d.relative(opts.StorePath)),
			Suggestion: "Run 'envstore decrypt' then 'envstore encrypt' to add the algorithm tag",
		}
	}

	return CheckResult{
		Name:    "Store",
		Status:  CheckPass,
		Message: fmt.Sprintf("%d variables, %s", len(decrypted.Vars), decrypted.Algorithm),
	}
}

func (d *doctor) relative(path string) string {
	if rel, err := filepath.Rel(d.project.Dir, path); err == nil {
		return rel
	}
	return path
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
