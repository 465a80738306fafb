// Package tui provides styled terminal output for the stimflow CLI.
// Simple, streaming, no complex TUI - just clean output.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stimflow/stimflow/pkg/lanes"
	"github.com/stimflow/stimflow/pkg/timeline"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// laneWidth is the character width of the lane bars.
const laneWidth = 60

// PrintTimelineInfo prints a summary of a loaded timeline.
func PrintTimelineInfo(t *timeline.Timeline, path string) {
	images, audios := 0, 0
	for _, e := range t.Events {
		switch e.Kind {
		case timeline.KindImage:
			images++
		case timeline.KindAudio:
			audios++
		}
	}

	fmt.Println()
	fmt.Println("  " + titleStyle.Render(t.Metadata.Name))
	if t.Metadata.Description != "" {
		fmt.Println("  " + mutedStyle.Render(t.Metadata.Description))
	}
	fmt.Println(mutedStyle.Render("  ─────────────────────────────────────"))
	fmt.Printf("  %s %s\n", mutedStyle.Render("File:"), path)
	fmt.Printf("  %s %dms\n", mutedStyle.Render("Duration:"), t.Metadata.DurationMS)
	fmt.Printf("  %s %d (%d image, %d audio)\n", mutedStyle.Render("Events:"), len(t.Events), images, audios)
	fmt.Printf("  %s %d\n", mutedStyle.Render("Lanes:"), len(lanes.Assign(t.Events)))
	fmt.Println(mutedStyle.Render("  ─────────────────────────────────────"))
}

// PrintLanes prints the lane-packed bar view of a timeline. Image events
// render as solid blocks, audio events as shaded blocks.
func PrintLanes(t *timeline.Timeline) {
	total := t.Metadata.DurationMS
	if total == 0 {
		fmt.Println(mutedStyle.Render("  (empty timeline)"))
		return
	}
	scale := float64(total) / laneWidth

	fmt.Println()
	fmt.Printf("  %s\n", mutedStyle.Render(fmt.Sprintf("0ms %s %dms", strings.Repeat(" ", laneWidth-4), total)))
	for i, lane := range lanes.Assign(t.Events) {
		bar := []rune(strings.Repeat(" ", laneWidth))
		for _, e := range lane.Events {
			glyph := '█'
			if e.Kind == timeline.KindAudio {
				glyph = '▓'
			}
			start := int(float64(e.OnsetMS) / scale)
			width := int(float64(e.DurationMS) / scale)
			if width < 1 {
				width = 1
			}
			for j := start; j < start+width && j < laneWidth; j++ {
				bar[j] = glyph
			}
		}
		fmt.Printf("  %s %s\n", mutedStyle.Render(fmt.Sprintf("lane %d", i+1)), string(bar))
	}

	fmt.Println()
	for _, e := range t.Events {
		fmt.Printf("  %s %s %s\n",
			accentStyle.Render(strings.ToUpper(e.Kind.String())),
			filepath.Base(e.Payload.File()),
			mutedStyle.Render(fmt.Sprintf("%dms → %dms", e.OnsetMS, e.End())))
	}
}

// PrintActive prints the stimuli active at a given instant.
func PrintActive(tMS int64, events []*timeline.StimulusEvent) {
	fmt.Printf("  At %dms:\n", tMS)
	if len(events) == 0 {
		fmt.Println(mutedStyle.Render("    no active stimuli"))
		return
	}
	for _, e := range events {
		detail := ""
		switch p := e.Payload.(type) {
		case *timeline.ImagePayload:
			detail = "position " + p.Position.String()
		case *timeline.AudioPayload:
			detail = fmt.Sprintf("volume %g", p.Volume)
		}
		fmt.Printf("    %s %s %s\n",
			accentStyle.Render(strings.ToUpper(e.Kind.String())),
			filepath.Base(e.Payload.File()),
			mutedStyle.Render(detail))
	}
}

// PrintValidationReport prints the result of validating a timeline.
// Returns true when the timeline is valid.
func PrintValidationReport(t *timeline.Timeline, problems map[int][]error) bool {
	if len(problems) == 0 {
		fmt.Println(successStyle.Render("  ✓ timeline is valid") +
			mutedStyle.Render(fmt.Sprintf(" (%d events)", len(t.Events))))
		return true
	}
	for i, e := range t.Events {
		errs, ok := problems[i]
		if !ok {
			continue
		}
		fmt.Printf("  %s event %d (%s at %dms):\n",
			accentStyle.Render("✗"), i, e.Kind, e.OnsetMS)
		for _, err := range errs {
			fmt.Println(mutedStyle.Render("      " + err.Error()))
		}
	}
	return false
}

// PrintSuccess prints a success line.
func PrintSuccess(msg string) {
	fmt.Println(successStyle.Render("  ✓ " + msg))
}

// ClearLine clears the current terminal line (used after progress output).
func ClearLine() {
	fmt.Print("\r\033[K")
}
