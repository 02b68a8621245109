// Package workspace persists manually added records in a named directory.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/utils"
	"github.com/google/uuid"
)

// EntriesFile holds the manual-entry list, newest first.
const EntriesFile = "manual_entries.json"

// ErrNotFound is returned when a workspace or an entry does not exist.
var ErrNotFound = errors.New("not found")

// Workspace is a named directory holding manual records and defaults. It is
// safe for concurrent use. Entries are stored with missing readings as null
// and take a caller's missing-value policy only on the way out.
type Workspace struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Source is loaded when a command gets no source argument.
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	mu      sync.Mutex
	entries []dataset.Record
	rootDir string
}

// New constructs an in-memory workspace. Call Save() to persist.
func New(name, description, rootDir string) *Workspace {
	now := time.Now()
	return &Workspace{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		entries:     []dataset.Record{},
		rootDir:     rootDir,
	}
}

// Load reads workspace.json and the manual entries from dir.
func Load(dir string) (*Workspace, error) {
	path := filepath.Join(dir, utils.WorkspaceFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace not found at %s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var w Workspace
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	w.rootDir = dir
	w.entries = []dataset.Record{}
	eb, err := os.ReadFile(filepath.Join(dir, EntriesFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read entries: %w", err)
	default:
		if err := json.Unmarshal(eb, &w.entries); err != nil {
			return nil, fmt.Errorf("parse entries: %w", err)
		}
	}
	return &w, nil
}

// RootDir returns the on-disk workspace directory path.
func (w *Workspace) RootDir() string { return w.rootDir }

// Save writes workspace.json and the entry list using atomic writes.
func (w *Workspace) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rootDir == "" {
		return errors.New("workspace root directory not set")
	}
	if err := utils.EnsureDir(w.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	w.UpdatedAt = time.Now()
	meta, err := utils.PrettyJSON(w)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(filepath.Join(w.rootDir, utils.WorkspaceFile), meta); err != nil {
		return err
	}
	entries, err := utils.PrettyJSON(w.entries)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(w.rootDir, EntriesFile), entries)
}

// AddEntry validates r, assigns it an ID and puts it in front of the list.
// r must be normalized under NullAsMissing; a reading stored as a valid zero
// stays a zero under every policy.
func (w *Workspace) AddEntry(r dataset.Record) (dataset.Record, error) {
	r.Country = strings.TrimSpace(r.Country)
	if r.Country == "" {
		return dataset.Record{}, errors.New("country is required")
	}
	r = r.WithPolicy(dataset.NullAsMissing)
	r.ID = uuid.NewString()
	r.Manual = true

	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append([]dataset.Record{r}, w.entries...)
	w.UpdatedAt = time.Now()
	return r, nil
}

// RemoveEntry deletes the entry with the given ID, or the single entry whose
// ID starts with the given prefix. A prefix shared by several entries is an
// error.
func (w *Workspace) RemoveEntry(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("entry id is required")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	match := -1
	for i, e := range w.entries {
		if e.ID == id {
			match = i
			break
		}
		if strings.HasPrefix(e.ID, id) {
			if match >= 0 {
				return fmt.Errorf("entry prefix %s is ambiguous; use more characters", id)
			}
			match = i
		}
	}
	if match < 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	w.entries = append(w.entries[:match], w.entries[match+1:]...)
	w.UpdatedAt = time.Now()
	return nil
}

// Entries returns the manual records under policy p, newest first.
func (w *Workspace) Entries(p dataset.MissingPolicy) []dataset.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entriesUnder(p)
}

func (w *Workspace) entriesUnder(p dataset.MissingPolicy) []dataset.Record {
	out := make([]dataset.Record, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.WithPolicy(p)
	}
	return out
}

// Apply puts the manual entries in front of records, the same way a single
// manual add prepends to the loaded set. Duplicated countries are kept.
func (w *Workspace) Apply(records []dataset.Record, p dataset.MissingPolicy) []dataset.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]dataset.Record, 0, len(w.entries)+len(records))
	out = append(out, w.entriesUnder(p)...)
	return append(out, records...)
}
