package features

import (
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// FlowDeviationTracker counts status edits that move a task backwards
// through the workflow from a stage it had already reached.
type FlowDeviationTracker struct {
	positions map[string]int
	parking   map[string]struct{}

	mark       int
	deviations int
}

// NewFlowDeviationTracker creates a tracker for the ordered flow stages.
// Edits touching a parking stage are ignored.
func NewFlowDeviationTracker(flow, parking []string) *FlowDeviationTracker {
	positions := make(map[string]int, len(flow))
	for i, stage := range flow {
		positions[stage] = i
	}
	parked := make(map[string]struct{}, len(parking))
	for _, stage := range parking {
		parked[stage] = struct{}{}
	}
	return &FlowDeviationTracker{
		positions: positions,
		parking:   parked,
	}
}

// Reset rewinds the tracker to the first stage with no deviations
func (t *FlowDeviationTracker) Reset() {
	t.mark = 0
	t.deviations = 0
}

// Observe applies a single status edit
func (t *FlowDeviationTracker) Observe(edit types.StatusEdit) {
	if edit.From == edit.To || t.isParking(edit.From) || t.isParking(edit.To) {
		return
	}
	from, okFrom := t.positions[edit.From]
	to, okTo := t.positions[edit.To]
	if !okFrom || !okTo {
		// Stages outside the flow neither move the mark nor count.
		return
	}
	if from <= t.mark && to < from {
		t.deviations++
	}
	t.mark = max(t.mark, to)
}

// Deviations returns the number of backward moves seen so far
func (t *FlowDeviationTracker) Deviations() int {
	return t.deviations
}

// Count resets the tracker and returns the deviations over edits
func (t *FlowDeviationTracker) Count(edits []types.StatusEdit) int {
	t.Reset()
	for _, edit := range edits {
		t.Observe(edit)
	}
	return t.deviations
}

func (t *FlowDeviationTracker) isParking(stage string) bool {
	_, ok := t.parking[stage]
	return ok
}
