package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/stimflow/stimflow/pkg/timeline"
)

// renderMarkerCSV produces the marker-code CSV consumed by generic EEG
// analysis pipelines: one header, one row per event in ascending onset
// order, marker_code defaulting to 1 when absent from the payload.
func renderMarkerCSV(doc timeline.Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"onset_ms", "duration_ms", "marker_code", "event_type", "stimulus_file"}); err != nil {
		return nil, err
	}
	for _, ev := range sortedEvents(doc) {
		row := []string{
			strconv.FormatInt(ev.TimestampMS, 10),
			strconv.FormatInt(ev.Duration(), 10),
			strconv.Itoa(ev.Marker()),
			ev.EventType,
			stimulusBase(ev),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// renderBIDS produces a BIDS-style events TSV: onset and duration in seconds
// with millisecond precision, value carrying the marker code.
func renderBIDS(doc timeline.Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	if err := w.Write([]string{"onset", "duration", "value", "event_type", "stim_file"}); err != nil {
		return nil, err
	}
	for _, ev := range sortedEvents(doc) {
		row := []string{
			seconds(ev.TimestampMS),
			seconds(ev.Duration()),
			strconv.Itoa(ev.Marker()),
			ev.EventType,
			stimulusBase(ev),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func seconds(ms int64) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000.0)
}
