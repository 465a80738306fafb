// Package lanes packs timeline events into non-overlapping display lanes.
//
// The partition is the classical greedy interval partitioning: minimal lane
// count, deterministic for a fixed input order, which keeps a visual layout
// stable across re-renders.
package lanes

import (
	"sort"

	"github.com/stimflow/stimflow/pkg/timeline"
)

// Lane is an ordered run of mutually non-overlapping events. End is the end
// time of the last event placed in the lane.
type Lane struct {
	Events []*timeline.StimulusEvent
	End    int64
}

// Assign partitions events into the minimum number of non-overlapping lanes.
//
// Events are taken in ascending onset order (ties keep their input order) and
// each is placed into the first lane, in creation order, whose End is <= the
// event's onset. A touching boundary (end == next onset) is not an overlap
// and packs into the same lane. A new lane opens only when no existing lane
// is free.
func Assign(events []*timeline.StimulusEvent) []Lane {
	sorted := make([]*timeline.StimulusEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OnsetMS < sorted[j].OnsetMS
	})

	var lanes []Lane
	for _, e := range sorted {
		placed := false
		for i := range lanes {
			if lanes[i].End <= e.OnsetMS {
				lanes[i].Events = append(lanes[i].Events, e)
				lanes[i].End = e.End()
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, Lane{
				Events: []*timeline.StimulusEvent{e},
				End:    e.End(),
			})
		}
	}
	return lanes
}

// Depth returns the maximum number of events simultaneously active at any
// instant, the lower bound on the lane count. Boundaries touch without
// overlapping, matching Assign.
func Depth(events []*timeline.StimulusEvent) int {
	type edge struct {
		t     int64
		delta int
	}
	edges := make([]edge, 0, 2*len(events))
	for _, e := range events {
		edges = append(edges, edge{e.OnsetMS, +1}, edge{e.End(), -1})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].t != edges[j].t {
			return edges[i].t < edges[j].t
		}
		// Process ends before starts so a touching boundary does not count
		// as an overlap.
		return edges[i].delta < edges[j].delta
	})

	depth, max := 0, 0
	for _, ed := range edges {
		depth += ed.delta
		if depth > max {
			max = depth
		}
	}
	return max
}
