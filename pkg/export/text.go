package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stimflow/stimflow/pkg/timeline"
)

// renderEEGLAB produces the tab-delimited event marker list EEGLAB imports:
// a header row, a comment block identifying the test, a repeated header row,
// then one data row per event, CRLF-terminated. EventID is the 1-based
// position in export order, not a stored identifier.
func renderEEGLAB(doc timeline.Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	w.UseCRLF = true

	header := []string{"Latency(ms)", "Type", "Duration(ms)", "EventID", "StimulusFile"}
	rows := [][]string{
		header,
		{"# Exported from StimFlow"},
		{"# Test: " + doc.Metadata.Name},
		{"# Description: " + doc.Metadata.Description},
		{},
		header,
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	for i, ev := range sortedEvents(doc) {
		row := []string{
			strconv.FormatInt(ev.TimestampMS, 10),
			ev.EventType,
			strconv.FormatInt(ev.Duration(), 10),
			strconv.Itoa(i + 1),
			stimulusBase(ev),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// renderEPrime produces the E-Prime style trial table: header and footer
// marker lines bracketing an 8-column trial listing. The output carries a
// UTF-8 BOM and CRLF line endings so Excel opens it cleanly.
func renderEPrime(doc timeline.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\xef\xbb\xbf")

	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	w.UseCRLF = true

	head := [][]string{
		{"*** Header Start ***"},
		{"VersionNumber:", "1.0"},
		{"LevelName:", "Session"},
		{"Title:", doc.Metadata.Name},
		{"Description:", doc.Metadata.Description},
		{"Exported:", "StimFlow"},
		{"*** Header End ***"},
		{},
		{"Procedure", "Trial", "Stimulus", "StimulusFile", "OnsetTime", "Duration", "Type", "Modality"},
	}
	for _, row := range head {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	for i, ev := range sortedEvents(doc) {
		trial := i + 1
		file := stimulusBase(ev)
		stimulus := ev.EventType + "_" + strconv.Itoa(trial)
		if file != "" {
			stimulus = strings.TrimSuffix(file, filepath.Ext(file))
		}
		row := []string{
			"TrialProc",
			strconv.Itoa(trial),
			stimulus,
			file,
			strconv.FormatInt(ev.TimestampMS, 10),
			strconv.FormatInt(ev.Duration(), 10),
			ev.EventType,
			strings.ToUpper(ev.EventType),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	if err := w.Write(nil); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"*** End of data ***"}); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
