package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// Fetcher loads the accepted tasks of a project set
type Fetcher struct {
	store  store.TaskReader
	logger *zap.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(s store.TaskReader, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		store:  s,
		logger: logger,
	}
}

// Fetch returns accepted tasks of the given projects, most recently updated
// first. Only projected fields are populated.
func (f *Fetcher) Fetch(ctx context.Context, projectIDs []string) ([]types.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	tasks, err := f.store.Tasks(ctx, store.TaskQuery{
		ProjectIDs: projectIDs,
		Status:     types.StatusAccepted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	out := make([]types.Task, len(tasks))
	for i, task := range tasks {
		out[i] = project(task)
	}
	f.logger.Info("fetched tasks",
		zap.Int("projects", len(projectIDs)),
		zap.Int("tasks", len(out)),
	)
	return out, nil
}

// project keeps only the fields listed in store.TaskProjection
func project(t types.Task) types.Task {
	return types.Task{
		ID:                   t.ID,
		Title:                t.Title,
		Body:                 t.Body,
		Labels:               t.Labels,
		Priority:             t.Priority,
		Points:               t.Points,
		Comments:             t.Comments,
		StatusEdits:          t.StatusEdits,
		PointsEstimatedEdits: t.PointsEstimatedEdits,
		PointsBurnedEdits:    t.PointsBurnedEdits,
		DueDate:              t.DueDate,
		Commits:              t.Commits,
		Assignees:            t.Assignees,
	}
}
