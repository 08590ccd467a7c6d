// Package features turns raw task records into flat, normalized feature records.
package features

import (
	"fmt"
	"math"

	"github.com/clintrovert/taskfeatures/internal/taxonomy"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// Burned points thresholds for the velocity class
const (
	fastBurnLimit   = 0.5
	mediumBurnLimit = 2
)

// Projector converts one task into one feature record.
// A Projector is not safe for concurrent use.
type Projector struct {
	labels     *LabelNormalizer
	flow       *FlowDeviationTracker
	priorities map[string]int
}

// NewProjector creates a projector backed by the given taxonomy
func NewProjector(tx *taxonomy.Taxonomy) *Projector {
	return &Projector{
		labels:     NewLabelNormalizer(tx.Labels, tx.Ambiguous),
		flow:       NewFlowDeviationTracker(tx.Flow, tx.Parking),
		priorities: tx.Priorities,
	}
}

// Project builds the feature record for task. The boolean is false when the
// task carries no points at all and must be left out of the output.
func (p *Projector) Project(task types.Task) (types.Feature, bool, error) {
	if task.Points == nil {
		return types.Feature{}, false, &MalformedTaskError{TaskID: task.ID, Reason: "points are missing"}
	}
	if task.Points.Total == 0 && task.Points.Done == 0 {
		return types.Feature{}, false, nil
	}

	priority, err := p.priority(task)
	if err != nil {
		return types.Feature{}, false, err
	}

	commits := AggregateCommits(task.Commits)
	burned := RoundHalf(task.Points.Done)

	feature := types.Feature{
		ID:        task.ID,
		Title:     SanitizeTitle(task.Title),
		Body:      task.Body,
		Assignees: append([]string{}, task.Assignees...),

		Labels:         p.labels.Normalize(task.Labels),
		NumberOfLabels: len(task.Labels),
		Priority:       priority,
		DueDate:        presence(task.DueDate != nil),

		ExpectedPoints:    RoundHalf(task.Points.Total),
		BurnedPoints:      burned,
		BurnedPointsClass: BurnedPointsClass(burned),

		PointsEstimatedNumberOfEdits:        len(task.PointsEstimatedEdits),
		PointsEstimatedEditsTotalDifference: netChange(task.PointsEstimatedEdits),
		PointsBurnedNumberOfEdits:           len(task.PointsBurnedEdits),

		NumberOfComments: len(task.Comments),
		Comments:         joinComments(task.Comments),

		NumberOfCommits:      len(task.Commits),
		TotalAdditions:       commits.Additions,
		TotalDeletions:       commits.Deletions,
		NumberOfFilesChanged: commits.FilesChanged,
		CommitMessages:       commits.Messages,

		StatusDeviateFromFlow: p.flow.Count(task.StatusEdits),
	}
	return feature, true, nil
}

func (p *Projector) priority(task types.Task) (int, error) {
	if task.Priority == "" {
		return p.priorities[types.PriorityNone], nil
	}
	ordinal, ok := p.priorities[task.Priority]
	if !ok {
		return 0, &MalformedTaskError{
			TaskID: task.ID,
			Reason: fmt.Sprintf("unknown priority %q", task.Priority),
		}
	}
	return ordinal, nil
}

// RoundHalf rounds x to the nearest 0.5, halves going up
func RoundHalf(x float64) float64 {
	return math.Floor(x*2+0.5) / 2
}

// BurnedPointsClass buckets burned points into fast (1), medium (2) and slow (3)
func BurnedPointsClass(burned float64) int {
	switch {
	case burned <= fastBurnLimit:
		return 1
	case burned <= mediumBurnLimit:
		return 2
	default:
		return 3
	}
}

func netChange(edits []types.PointsEdit) float64 {
	if len(edits) == 0 {
		return 0
	}
	return edits[len(edits)-1].ToPoints - edits[0].FromPoints
}

func presence(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
