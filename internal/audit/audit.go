package audit

import (
	"bytes"
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// TimestampFormat is RFC3339 in UTC with microseconds.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Operation names recorded in the log.
const (
	OpInit    = "init"
	OpEncrypt = "encrypt"
	OpDecrypt = "decrypt"
	OpList    = "list"
	OpSetKey  = "set-key"
)

// Entry is one line of the audit log. Values are never recorded.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"`
	User      string `json:"user,omitempty"`
	Operation string `json:"op"`

	Files     []string `json:"files,omitempty"`      // Store files touched.
	Variables []string `json:"variables,omitempty"`  // Variable names, for encrypt.
	Algorithm string   `json:"algorithm,omitempty"`  // For encrypt/decrypt.
	Tagged    *bool    `json:"tagged,omitempty"`     // For decrypt.
	KeySource string   `json:"key_source,omitempty"` // explicit, file or default.
	KeyFile   string   `json:"key_file,omitempty"`   // For set-key/init.
}

// NewEntry returns an entry for op with a fresh ID and the current OS user.
func NewEntry(op string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Operation: op,
	}

	if u, err := user.Current(); err == nil {
		entry.User = u.Username
	}

	return entry
}

// Log appends entry to the log at path. An empty path disables logging.
// Failures are ignored; operations must not fail because of the audit log.
func Log(path string, entry Entry) {
	if path == "" {
		return
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}

	// #nosec G306 -- the log holds names, never values.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the log at path.
// A missing log yields no entries and no error.
func ReadEntries(path string) ([]Entry, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data), nil
}

// ParseEntries parses JSON lines. Malformed lines, such as a partial
// final write, are skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// Last returns the final n entries, or all of them when n <= 0.
func Last(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}

// Bool returns a pointer to b, for optional fields.
func Bool(b bool) *bool {
	return &b
}
