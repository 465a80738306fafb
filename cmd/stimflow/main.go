// StimFlow - Multi-modal stimulus timeline toolkit
// Builds, inspects, previews, and exports stimulus timelines for
// behavioral/neuroscience experiments.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/stimflow/stimflow/pkg/config"
	"github.com/stimflow/stimflow/pkg/export"
	"github.com/stimflow/stimflow/pkg/player"
	"github.com/stimflow/stimflow/pkg/recent"
	"github.com/stimflow/stimflow/pkg/timeline"
	"github.com/stimflow/stimflow/pkg/tui"
	"github.com/stimflow/stimflow/pkg/validate"
	"github.com/stimflow/stimflow/pkg/watch"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	inputFile  string
	outputFile string
	formatFlag string
	exportAll  bool
	outDir     string
	verbose    bool

	// Query flags
	atTime      int64
	toleranceMS int64

	// Playback flags
	speedFlag float64
	tickMS    int
)

var disk = timeline.Disk{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stimflow",
	Short: "StimFlow - Build and export multi-modal stimulus timelines",
	Long: `StimFlow is a CLI toolkit for millisecond-resolution stimulus timelines:
synchronized image and audio presentation schedules for behavioral and
neuroscience experiments, exportable to EEGLAB, E-Prime, BIDS, and CSV
marker formats.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about a timeline file",
	Long: `Load a timeline file and display its metadata, event counts, and lane
layout. With --at, also list the stimuli active at that instant.

Examples:
  stimflow info -i attention.json
  stimflow info -i attention.json --at 1500
  stimflow info -i attention.json --at 1500 --tolerance 50`,
	RunE: runInfo,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every event of a timeline against its field constraints",
	RunE:  runValidate,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a timeline to an external analysis format",
	Long: `Export a timeline to EEGLAB (.txt), E-Prime (.txt), marker CSV, BIDS TSV,
Excel (.xlsx), or native JSON. The format is detected from the output path
unless --format is given.

Examples:
  stimflow export -i attention.json -o attention_eeglab.txt
  stimflow export -i attention.json -o markers.csv
  stimflow export -i attention.json -o events.tsv --format bids
  stimflow export -i attention.json --all --out-dir results/`,
	RunE: runExport,
}

var lanesCmd = &cobra.Command{
	Use:   "lanes",
	Short: "Print the non-overlapping lane layout of a timeline",
	RunE:  runLanes,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Play back a timeline in the terminal",
	Long: `Simulate timeline playback: poll the timeline on a fixed tick and show
playback progress. With --verbose, print the active stimuli whenever the
set changes. This is a scheduling preview, not a stimulus renderer.`,
	RunE: runPreview,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export a timeline whenever its file changes",
	RunE:  runWatch,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Write and display a sample attention-task timeline",
	RunE:  runDemo,
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently opened timeline files",
	RunE:  runRecent,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	infoCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Timeline file path (required)")
	infoCmd.Flags().Int64Var(&atTime, "at", -1, "Show stimuli active at this time (ms)")
	infoCmd.Flags().Int64Var(&toleranceMS, "tolerance", 0, "Widen the --at interval test by this many ms")
	infoCmd.MarkFlagRequired("input")

	validateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Timeline file path (required)")
	validateCmd.MarkFlagRequired("input")

	exportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Timeline file path (required)")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Export format (json, eeglab, eprime, csv, bids, xlsx) - detected from output path if not specified")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every format at once")
	exportCmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory for --all")
	exportCmd.MarkFlagRequired("input")

	lanesCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Timeline file path (required)")
	lanesCmd.MarkFlagRequired("input")

	previewCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Timeline file path (required)")
	previewCmd.Flags().Float64Var(&speedFlag, "speed", 0, "Playback rate multiplier (default from config)")
	previewCmd.Flags().IntVar(&tickMS, "tick", 0, "Polling interval in ms (default from config)")
	previewCmd.MarkFlagRequired("input")

	watchCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Timeline file path (required)")
	watchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	watchCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Export format - detected from output path if not specified")
	watchCmd.MarkFlagRequired("input")
	watchCmd.MarkFlagRequired("output")

	demoCmd.Flags().StringVarP(&outputFile, "output", "o", "attention_demo.json", "Where to write the demo timeline")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(lanesCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(recentCmd)
}

// loadTimeline loads the input timeline and records it in the recent list.
func loadTimeline(path string) (*timeline.Timeline, error) {
	t, err := timeline.Load(disk, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	rememberRecent(path)
	return t, nil
}

func rememberRecent(path string) {
	cfg := config.Global().Get()
	// Best effort: a failed recent-list update never fails the command.
	recent.NewList(disk, cfg.Recent.Path, cfg.Recent.Max).Add(path)
}

func runInfo(cmd *cobra.Command, args []string) error {
	t, err := loadTimeline(inputFile)
	if err != nil {
		return err
	}

	tui.PrintTimelineInfo(t, inputFile)
	if atTime >= 0 {
		fmt.Println()
		tui.PrintActive(atTime, t.EventsAt(atTime, toleranceMS))
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	t, err := loadTimeline(inputFile)
	if err != nil {
		return err
	}

	if !tui.PrintValidationReport(t, validate.Timeline(t)) {
		return fmt.Errorf("timeline %s has invalid events", inputFile)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	t, err := loadTimeline(inputFile)
	if err != nil {
		return err
	}
	doc := t.ToDocument()

	if exportAll {
		dir := outDir
		if dir == "" {
			dir = config.Global().Get().Export.OutputDir
		}
		if dir == "" {
			dir = filepath.Dir(inputFile)
		}
		base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))

		paths, err := export.ExportAll(doc, disk, dir, base)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		for _, p := range paths {
			tui.PrintSuccess(p)
		}
		return nil
	}

	if outputFile == "" {
		return fmt.Errorf("output file required (or use --all)")
	}

	format := export.Detect(outputFile)
	if formatFlag != "" {
		format = export.ParseFormat(formatFlag)
		if format == export.FormatUnknown {
			return fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, formatFlag)
		}
	}

	if verbose {
		fmt.Printf("Input:  %s\n", inputFile)
		fmt.Printf("Output: %s\n", outputFile)
		fmt.Printf("Format: %s\n", format)
	}

	if err := export.Export(doc, disk, outputFile, format); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	tui.PrintSuccess(fmt.Sprintf("exported %d events to %s (%s)", len(doc.Events), outputFile, format))
	return nil
}

func runLanes(cmd *cobra.Command, args []string) error {
	t, err := loadTimeline(inputFile)
	if err != nil {
		return err
	}

	tui.PrintTimelineInfo(t, inputFile)
	tui.PrintLanes(t)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	t, err := loadTimeline(inputFile)
	if err != nil {
		return err
	}
	if len(t.Events) == 0 {
		return fmt.Errorf("timeline %s has no events", inputFile)
	}

	cfg := config.Global().Get()
	tick := cfg.Playback.TickMS
	if tickMS > 0 {
		tick = tickMS
	}
	speed := cfg.Playback.Speed
	if speedFlag > 0 {
		speed = speedFlag
	}

	ctx, cancel := signalContext()
	defer cancel()

	bar := progressbar.NewOptions64(t.Metadata.DurationMS,
		progressbar.OptionSetDescription("playback"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)

	var lastActive string
	p := &player.Player{
		Timeline: t,
		Tick:     time.Duration(tick) * time.Millisecond,
		Speed:    speed,
		OnFrame: func(f player.Frame) {
			bar.Set64(f.TimeMS)
			if !verbose {
				return
			}
			sig := activeSignature(f.Active)
			if sig != lastActive {
				lastActive = sig
				fmt.Println()
				tui.PrintActive(f.TimeMS, f.Active)
			}
		},
	}

	err = p.Run(ctx)
	bar.Finish()
	tui.ClearLine()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Playback interrupted.")
			return nil
		}
		return err
	}
	tui.PrintSuccess(fmt.Sprintf("playback complete (%dms)", t.Metadata.DurationMS))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	format := export.Detect(outputFile)
	if formatFlag != "" {
		format = export.ParseFormat(formatFlag)
		if format == export.FormatUnknown {
			return fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, formatFlag)
		}
	}

	reExport := func(path string) error {
		t, err := timeline.Load(disk, path)
		if err != nil {
			return err
		}
		if err := export.Export(t.ToDocument(), disk, outputFile, format); err != nil {
			return err
		}
		tui.PrintSuccess(fmt.Sprintf("re-exported %s -> %s", path, outputFile))
		return nil
	}

	// Initial export before watching
	if err := reExport(inputFile); err != nil {
		return err
	}

	w, err := watch.New(inputFile)
	if err != nil {
		return err
	}
	defer w.Close()

	w.OnChange = reExport
	w.OnError = func(err error) {
		fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)...\n", inputFile)

	ctx, cancel := signalContext()
	defer cancel()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	t := demoTimeline()
	if err := t.Save(disk, outputFile); err != nil {
		return fmt.Errorf("failed to save demo timeline: %w", err)
	}

	tui.PrintTimelineInfo(t, outputFile)
	tui.PrintLanes(t)

	fmt.Println()
	for _, at := range []int64{250, 600, 1500, 2700, 4000} {
		tui.PrintActive(at, t.EventsAt(at, 0))
	}
	return nil
}

// demoTimeline builds the attention-task sample: a fixation cross, an audio
// cue, a target image with a synchronized tone, and a late distractor.
func demoTimeline() *timeline.Timeline {
	t := timeline.New()
	t.Metadata.Name = "Attention Task Demo"
	t.Metadata.Description = "Multi-modal attention test with synchronized visual and auditory stimuli"

	t.AddEvent(timeline.NewImageEvent(0, 500, timeline.ImagePayload{
		FilePath: "stimuli/fixation_cross.png",
		Position: timeline.PosCenter,
	}))
	t.AddEvent(timeline.NewAudioEvent(500, 200, timeline.AudioPayload{
		FilePath: "stimuli/beep.wav",
		Volume:   0.8,
	}))
	t.AddEvent(timeline.NewImageEvent(1000, 2000, timeline.ImagePayload{
		FilePath:   "stimuli/target.png",
		Position:   timeline.PosCenter,
		MarkerCode: 10,
	}))
	t.AddEvent(timeline.NewAudioEvent(1000, 1000, timeline.AudioPayload{
		FilePath:   "stimuli/tone.wav",
		Volume:     1.0,
		MarkerCode: 11,
	}))
	t.AddEvent(timeline.NewImageEvent(2500, 1000, timeline.ImagePayload{
		FilePath:   "stimuli/distractor.png",
		Position:   timeline.PosTopRight,
		MarkerCode: 20,
	}))
	return t
}

func runRecent(cmd *cobra.Command, args []string) error {
	cfg := config.Global().Get()
	entries := recent.NewList(disk, cfg.Recent.Path, cfg.Recent.Max).Entries()

	if len(entries) == 0 {
		fmt.Println("No recent timeline files.")
		return nil
	}
	fmt.Println("Recent timeline files:")
	for _, p := range entries {
		fmt.Printf("  - %s\n", p)
	}
	return nil
}

// activeSignature builds a change-detection key for an active event set.
func activeSignature(events []*timeline.StimulusEvent) string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return strings.Join(ids, ",")
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return ctx, cancel
}

