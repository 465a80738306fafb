// Package player drives timeline playback for preview purposes.
//
// The player is the polling collaborator the timeline core is designed for:
// it repeatedly asks EventsAt what is active as the clock advances and hands
// each frame to a callback. It renders nothing itself; actual stimulus
// presentation is the embedding application's concern.
package player

import (
	"context"
	"time"

	"github.com/stimflow/stimflow/pkg/timeline"
)

// DefaultTick is the default polling interval (~60 frames per second).
const DefaultTick = 16 * time.Millisecond

// Frame is one observation of the timeline at a playback instant.
type Frame struct {
	TimeMS int64
	Active []*timeline.StimulusEvent
}

// Player polls a timeline on a fixed tick.
//
// The player only reads the timeline; per the core's concurrency contract
// the caller must not mutate the timeline while Run is in flight.
type Player struct {
	Timeline *timeline.Timeline
	Tick     time.Duration // 0 = DefaultTick
	Speed    float64       // playback rate multiplier, 0 = 1.0
	OnFrame  func(Frame)
}

// FrameAt returns the frame the player would observe at tMS.
func (p *Player) FrameAt(tMS int64) Frame {
	return Frame{TimeMS: tMS, Active: p.Timeline.EventsAt(tMS, 0)}
}

// Run plays the timeline from zero until its duration is exceeded, invoking
// OnFrame on every tick. Returns ctx.Err when cancelled early, nil on
// natural completion.
func (p *Player) Run(ctx context.Context) error {
	tick := p.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	speed := p.Speed
	if speed <= 0 {
		speed = 1.0
	}

	total := p.Timeline.Metadata.DurationMS
	start := time.Now()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			elapsed := int64(float64(time.Since(start).Milliseconds()) * speed)
			if elapsed > total {
				return nil
			}
			if p.OnFrame != nil {
				p.OnFrame(p.FrameAt(elapsed))
			}
		}
	}
}
