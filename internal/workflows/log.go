package workflows

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/PolarWolf314/envstore/internal/audit"
	kerrors "github.com/PolarWolf314/envstore/internal/errors"
)

const dateFormat = "2006-01-02"

// LogOptions configures the log workflow.
type LogOptions struct {
	Project *Project

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest.
	Reverse bool

	// User filters entries by OS user name.
	User string

	// Operations filters entries by comma separated operation names.
	Operations string

	// Since and Until bound entries by date (YYYY-MM-DD, inclusive).
	Since string
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	Path    string
	Entries []audit.Entry

	// Total is the number of entries before filtering.
	Total int
}

// Log reads and filters the audit log.
//
// Returns ErrAuditDisabled when audit-log-path is not configured.
// Returns ErrInvalidDateFormat for a malformed Since or Until.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	logPath := opts.Project.auditLogPath()
	if logPath == "" {
		return nil, kerrors.ErrAuditDisabled
	}

	filter, err := newEntryFilter(opts)
	if err != nil {
		return nil, err
	}

	entries, err := audit.ReadEntries(logPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading audit log: %v", kerrors.ErrIO, err)
	}

	var filtered []audit.Entry
	for _, e := range entries {
		if filter.match(e) {
			filtered = append(filtered, e)
		}
	}

	// Limit keeps the most recent entries either way.
	filtered = audit.Last(filtered, opts.Limit)
	if opts.Reverse {
		slices.Reverse(filtered)
	}

	return &LogResult{
		Path:    logPath,
		Entries: filtered,
		Total:   len(entries),
	}, nil
}

type entryFilter struct {
	user  string
	ops   map[string]bool
	since time.Time
	until time.Time
}

func newEntryFilter(opts LogOptions) (*entryFilter, error) {
	f := &entryFilter{user: opts.User}

	if opts.Operations != "" {
		f.ops = make(map[string]bool)
		for _, op := range strings.Split(opts.Operations, ",") {
			if op = strings.ToLower(strings.TrimSpace(op)); op != "" {
				f.ops[op] = true
			}
		}
	}

	if opts.Since != "" {
		t, err := time.Parse(dateFormat, opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since %q, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat, opts.Since)
		}
		f.since = t
	}

	if opts.Until != "" {
		t, err := time.Parse(dateFormat, opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until %q, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat, opts.Until)
		}
		// Include the whole day.
		f.until = t.Add(24*time.Hour - time.Nanosecond)
	}

	return f, nil
}

func (f *entryFilter) match(e audit.Entry) bool {
	if f.user != "" && !strings.EqualFold(e.User, f.user) {
		return false
	}
	if f.ops != nil && !f.ops[strings.ToLower(e.Operation)] {
		return false
	}

	if f.since.IsZero() && f.until.IsZero() {
		return true
	}

	ts, err := time.Parse(audit.TimestampFormat, e.Timestamp)
	if err != nil {
		if ts, err = time.Parse(time.RFC3339, e.Timestamp); err != nil {
			return false
		}
	}
	if !f.since.IsZero() && ts.Before(f.since) {
		return false
	}
	if !f.until.IsZero() && ts.After(f.until) {
		return false
	}
	return true
}

// FormatDateTime renders an entry timestamp as local "2006-01-02 15:04:05".
// Unparseable timestamps are returned unchanged.
func FormatDateTime(ts string) string {
	t, err := time.Parse(audit.TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatDetails summarizes the operation specific fields of an entry.
func FormatDetails(e audit.Entry) string {
	var parts []string
	if len(e.Files) > 0 {
		parts = append(parts, strings.Join(e.Files, ", "))
	}
	if e.Algorithm != "" {
		parts = append(parts, "alg="+e.Algorithm)
	}
	if e.Tagged != nil && !*e.Tagged {
		parts = append(parts, "untagged")
	}
	if len(e.Variables) > 0 {
		parts = append(parts, fmt.Sprintf("vars=%d", len(e.Variables)))
	}
	if e.KeySource != "" {
		parts = append(parts, "key="+e.KeySource)
	}
	if e.KeyFile != "" && len(e.Files) == 0 {
		parts = append(parts, e.KeyFile)
	}
	return strings.Join(parts, "  ")
}
