package player

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stimflow/stimflow/pkg/timeline"
)

func shortTimeline() *timeline.Timeline {
	tl := timeline.New()
	tl.AddEvent(timeline.NewImageEvent(0, 30, timeline.ImagePayload{FilePath: "a.png"}))
	tl.AddEvent(timeline.NewAudioEvent(10, 20, timeline.AudioPayload{FilePath: "b.wav", Volume: 1.0}))
	return tl
}

func TestFrameAt(t *testing.T) {
	tl := timeline.New()
	tl.AddEvent(timeline.NewImageEvent(1000, 2000, timeline.ImagePayload{FilePath: "target.png"}))
	tl.AddEvent(timeline.NewAudioEvent(1000, 1000, timeline.AudioPayload{FilePath: "tone.wav", Volume: 1.0}))
	p := &Player{Timeline: tl}

	tests := []struct {
		t      int64
		active int
	}{
		{0, 0},
		{1000, 2},
		{1500, 2},
		{2500, 1},
		{4000, 0},
	}
	for _, tt := range tests {
		frame := p.FrameAt(tt.t)
		if frame.TimeMS != tt.t {
			t.Errorf("FrameAt(%d).TimeMS = %d", tt.t, frame.TimeMS)
		}
		if len(frame.Active) != tt.active {
			t.Errorf("FrameAt(%d) = %d active, want %d", tt.t, len(frame.Active), tt.active)
		}
	}
}

func TestRunCompletes(t *testing.T) {
	var frames atomic.Int64
	p := &Player{
		Timeline: shortTimeline(),
		Tick:     5 * time.Millisecond,
		OnFrame:  func(Frame) { frames.Add(1) },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if frames.Load() == 0 {
		t.Error("OnFrame never invoked")
	}
}

func TestRunCancelled(t *testing.T) {
	tl := timeline.New()
	tl.AddEvent(timeline.NewImageEvent(0, 60_000, timeline.ImagePayload{FilePath: "long.png"}))
	p := &Player{Timeline: tl, Tick: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestRunEmptyTimeline(t *testing.T) {
	p := &Player{Timeline: timeline.New(), Tick: time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := p.Run(ctx); err != nil {
		t.Errorf("Run on empty timeline = %v, want nil", err)
	}
}

func TestRunSpeed(t *testing.T) {
	// At 10x a 100ms timeline should finish in well under a second
	tl := timeline.New()
	tl.AddEvent(timeline.NewImageEvent(0, 100, timeline.ImagePayload{FilePath: "a.png"}))
	p := &Player{Timeline: tl, Tick: 2 * time.Millisecond, Speed: 10}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("10x playback of 100ms took %v", elapsed)
	}
}
