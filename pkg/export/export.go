// Package export renders a timeline document into external analysis formats.
//
// Every formatter is a pure transformation of the canonical serializable
// form (timeline.Document): read-only, deterministic, and robust to input it
// did not produce itself — rows are re-sorted by timestamp even though the
// timeline invariant already guarantees the order.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/stimflow/stimflow/pkg/timeline"
)

// ErrUnsupportedFormat is returned when an explicit format selector does not
// match any known formatter.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Format selects an export formatter.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatEEGLAB
	FormatEPrime
	FormatMarkerCSV
	FormatBIDS
	FormatXLSX
)

// String returns the canonical selector name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatEEGLAB:
		return "eeglab"
	case FormatEPrime:
		return "eprime"
	case FormatMarkerCSV:
		return "csv"
	case FormatBIDS:
		return "bids"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format selector string.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "eeglab":
		return FormatEEGLAB
	case "eprime", "e-prime":
		return FormatEPrime
	case "csv", "markers":
		return FormatMarkerCSV
	case "bids", "tsv":
		return FormatBIDS
	case "xlsx", "excel":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

// Detect chooses a format from a target path. ".txt" defaults to the EEGLAB
// marker list unless the file name hints at E-Prime; unrecognized extensions
// fall back to native JSON as the safe default.
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatMarkerCSV
	case ".tsv":
		return FormatBIDS
	case ".xlsx":
		return FormatXLSX
	case ".txt":
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		switch {
		case strings.Contains(stem, "eeglab") || strings.Contains(stem, "eeg"):
			return FormatEEGLAB
		case strings.Contains(stem, "eprime") || strings.Contains(stem, "e-prime"):
			return FormatEPrime
		default:
			return FormatEEGLAB
		}
	default:
		return FormatJSON
	}
}

// Render produces the file content for doc in the given format.
func Render(doc timeline.Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return renderJSON(doc)
	case FormatEEGLAB:
		return renderEEGLAB(doc)
	case FormatEPrime:
		return renderEPrime(doc)
	case FormatMarkerCSV:
		return renderMarkerCSV(doc)
	case FormatBIDS:
		return renderBIDS(doc)
	case FormatXLSX:
		return renderXLSX(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Export writes doc to path in the given format. Filesystem failures surface
// directly to the caller; nothing is retried.
func Export(doc timeline.Document, fsys timeline.FS, path string, format Format) error {
	data, err := Render(doc, format)
	if err != nil {
		return err
	}
	return fsys.WriteFile(path, data, 0644)
}

// allFormats is the set ExportAll emits, with the file suffix each format
// conventionally uses. The suffixes round-trip through Detect.
var allFormats = []struct {
	format Format
	suffix string
}{
	{FormatJSON, ".json"},
	{FormatEEGLAB, "_eeglab.txt"},
	{FormatEPrime, "_eprime.txt"},
	{FormatMarkerCSV, "_markers.csv"},
	{FormatBIDS, "_events.tsv"},
	{FormatXLSX, "_trials.xlsx"},
}

// ExportAll writes doc to dir in every supported format, using base as the
// file name stem. Rendering runs concurrently; the writes are sequential
// because the FS contract does not require goroutine-safety. Returns the
// paths written.
func ExportAll(doc timeline.Document, fsys timeline.FS, dir, base string) ([]string, error) {
	var g errgroup.Group
	paths := make([]string, len(allFormats))
	rendered := make([][]byte, len(allFormats))
	for i, af := range allFormats {
		i, af := i, af
		paths[i] = filepath.Join(dir, base+af.suffix)
		g.Go(func() error {
			data, err := Render(doc, af.format)
			if err != nil {
				return fmt.Errorf("%s: %w", af.format, err)
			}
			rendered[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, af := range allFormats {
		if err := fsys.WriteFile(paths[i], rendered[i], 0644); err != nil {
			return nil, fmt.Errorf("%s: %w", af.format, err)
		}
	}
	return paths, nil
}

func renderJSON(doc timeline.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// sortedEvents returns the document's events stably re-sorted by timestamp.
// Formatters must not assume the timeline sort invariant holds in data they
// did not produce themselves.
func sortedEvents(doc timeline.Document) []timeline.DocEvent {
	events := make([]timeline.DocEvent, len(doc.Events))
	copy(events, doc.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TimestampMS < events[j].TimestampMS
	})
	return events
}

// stimulusBase returns the bare file name of an event's stimulus file, empty
// when the event has none.
func stimulusBase(ev timeline.DocEvent) string {
	file := ev.StimulusFile()
	if file == "" {
		return ""
	}
	return filepath.Base(file)
}
