// Package recent tracks recently opened timeline files.
package recent

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/stimflow/stimflow/pkg/timeline"
)

// DefaultMax is the default cap on the recent-files list.
const DefaultMax = 10

// List is a persisted most-recent-first list of timeline file paths.
type List struct {
	fsys timeline.FS
	path string
	max  int

	// Exists reports whether a listed file still exists; entries that fail
	// the check are dropped from Entries. Overridable in tests.
	Exists func(path string) bool
}

type store struct {
	RecentFiles []string `json:"recent_files"`
}

// NewList creates a recent-files list persisted at path.
func NewList(fsys timeline.FS, path string, max int) *List {
	if max <= 0 {
		max = DefaultMax
	}
	return &List{
		fsys: fsys,
		path: path,
		max:  max,
		Exists: func(p string) bool {
			_, err := os.Stat(p)
			return err == nil
		},
	}
}

// Add records path as the most recently opened file: front-inserted,
// de-duplicated, capped at the list maximum.
func (l *List) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	existing, _ := l.load()
	entries := []string{abs}
	for _, p := range existing {
		if p != abs {
			entries = append(entries, p)
		}
	}
	if len(entries) > l.max {
		entries = entries[:l.max]
	}

	data, err := json.MarshalIndent(store{RecentFiles: entries}, "", "  ")
	if err != nil {
		return err
	}
	return l.fsys.WriteFile(l.path, data, 0644)
}

// Entries returns the list, most recent first, filtered to files that still
// exist. A missing or unreadable store file yields an empty list.
func (l *List) Entries() []string {
	entries, err := l.load()
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range entries {
		if l.Exists(p) {
			out = append(out, p)
		}
	}
	return out
}

func (l *List) load() ([]string, error) {
	data, err := l.fsys.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	var s store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.RecentFiles, nil
}
