package activities

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/features"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// Extractor runs the individual pipeline stages
type Extractor interface {
	Resolve(ctx context.Context, orgs []string) ([]string, error)
	Fetch(ctx context.Context, projectIDs []string) ([]types.Task, error)
	Transform(tasks []types.Task) ([]types.Feature, error)
	Classify(ctx context.Context, in []types.Feature) ([]types.Feature, error)
}

var _ Extractor = (*pipeline.Pipeline)(nil)

// ExtractionActivities exposes the pipeline stages as Temporal activities
type ExtractionActivities struct {
	extractor Extractor
	logger    *zap.Logger
}

// NewExtractionActivities creates a new extraction activities handler
func NewExtractionActivities(extractor Extractor, logger *zap.Logger) *ExtractionActivities {
	return &ExtractionActivities{
		extractor: extractor,
		logger:    logger,
	}
}

// ResolveProjects resolves organization names into live project ids
func (a *ExtractionActivities) ResolveProjects(ctx context.Context, orgs []string) (ResolveResult, error) {
	a.activityLogger(ctx).Info("resolving projects", zap.Strings("organizations", orgs))

	if len(orgs) == 0 {
		return ResolveResult{}, toApplicationError(pipeline.ErrNoOrganizations)
	}
	projectIDs, err := a.extractor.Resolve(ctx, orgs)
	if err != nil {
		return ResolveResult{}, toApplicationError(err)
	}
	return ResolveResult{ProjectIDs: projectIDs}, nil
}

// FetchTasks loads the accepted tasks of the projects
func (a *ExtractionActivities) FetchTasks(ctx context.Context, projectIDs []string) (FetchResult, error) {
	a.activityLogger(ctx).Info("fetching tasks", zap.Int("projects", len(projectIDs)))

	tasks, err := a.extractor.Fetch(ctx, projectIDs)
	if err != nil {
		return FetchResult{}, toApplicationError(err)
	}
	return FetchResult{Tasks: tasks}, nil
}

// ProjectFeatures turns tasks into feature records
func (a *ExtractionActivities) ProjectFeatures(ctx context.Context, tasks []types.Task) (FeaturesResult, error) {
	a.activityLogger(ctx).Info("projecting features", zap.Int("tasks", len(tasks)))

	out, err := a.extractor.Transform(tasks)
	if err != nil {
		return FeaturesResult{}, toApplicationError(err)
	}
	return FeaturesResult{Features: out, Excluded: len(tasks) - len(out)}, nil
}

// ClassifyFeatures attaches categories and focus areas to features
func (a *ExtractionActivities) ClassifyFeatures(ctx context.Context, in []types.Feature) (FeaturesResult, error) {
	a.activityLogger(ctx).Info("classifying features", zap.Int("features", len(in)))

	out, err := a.extractor.Classify(ctx, in)
	if err != nil {
		return FeaturesResult{}, toApplicationError(err)
	}
	return FeaturesResult{Features: out, Excluded: len(in) - len(out)}, nil
}

func (a *ExtractionActivities) activityLogger(ctx context.Context) *zap.Logger {
	if !activity.IsActivity(ctx) {
		return a.logger
	}
	info := activity.GetInfo(ctx)
	return a.logger.With(
		zap.String("workflow_id", info.WorkflowExecution.ID),
		zap.String("activity", info.ActivityType.Name),
		zap.Int32("attempt", info.Attempt),
	)
}

// toApplicationError tags pipeline failures so workflows and clients can tell
// them apart. Malformed input and missing organizations are never retried.
func toApplicationError(err error) error {
	switch {
	case errors.Is(err, features.ErrMalformedTask):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeMalformedTask, err)
	case errors.Is(err, pipeline.ErrNoOrganizations):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNoOrganizations, err)
	case errors.Is(err, store.ErrStoreUnavailable):
		return temporal.NewApplicationError(err.Error(), ErrTypeStoreUnavailable, err)
	default:
		return err
	}
}
