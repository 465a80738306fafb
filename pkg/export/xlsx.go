package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/stimflow/stimflow/pkg/timeline"
)

// renderXLSX produces an Excel workbook holding the trial table on a single
// "Trials" sheet, mirroring the E-Prime column layout for labs that work
// from spreadsheets directly.
func renderXLSX(doc timeline.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Trials"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"Procedure", "Trial", "Stimulus", "StimulusFile", "OnsetTime", "Duration", "Type", "Modality"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, ev := range sortedEvents(doc) {
		trial := i + 1
		file := stimulusBase(ev)
		stimulus := ev.EventType + "_" + strconv.Itoa(trial)
		if file != "" {
			stimulus = strings.TrimSuffix(file, filepath.Ext(file))
		}
		row := []any{
			"TrialProc",
			trial,
			stimulus,
			file,
			ev.TimestampMS,
			ev.Duration(),
			ev.EventType,
			strings.ToUpper(ev.EventType),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
