package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/clintrovert/taskfeatures/internal/activities"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
)

// ActivityOptions are shared by every extraction step
var ActivityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: 10 * time.Minute,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:        time.Second,
		BackoffCoefficient:     2.0,
		MaximumInterval:        time.Minute,
		MaximumAttempts:        3,
		NonRetryableErrorTypes: []string{activities.ErrTypeMalformedTask, activities.ErrTypeNoOrganizations},
	},
}

// ExtractFeaturesWorkflow extracts the feature records of a set of organizations
func ExtractFeaturesWorkflow(ctx workflow.Context, input ExtractionInput) (*ExtractionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting extraction workflow", "organizations", input.Organizations)

	if len(input.Organizations) == 0 {
		return nil, temporal.NewNonRetryableApplicationError(
			pipeline.ErrNoOrganizations.Error(), activities.ErrTypeNoOrganizations, nil)
	}

	ctx = workflow.WithActivityOptions(ctx, ActivityOptions)
	var a *activities.ExtractionActivities

	// Step 1: Resolve organizations into projects
	var resolved activities.ResolveResult
	err := workflow.ExecuteActivity(ctx, a.ResolveProjects, input.Organizations).Get(ctx, &resolved)
	if err != nil {
		logger.Error("failed to resolve projects", "error", err)
		return nil, err
	}

	// Step 2: Fetch accepted tasks
	var fetched activities.FetchResult
	err = workflow.ExecuteActivity(ctx, a.FetchTasks, resolved.ProjectIDs).Get(ctx, &fetched)
	if err != nil {
		logger.Error("failed to fetch tasks", "error", err)
		return nil, err
	}

	// Step 3: Project features
	var projected activities.FeaturesResult
	err = workflow.ExecuteActivity(ctx, a.ProjectFeatures, fetched.Tasks).Get(ctx, &projected)
	if err != nil {
		logger.Error("failed to project features", "error", err)
		return nil, err
	}

	result := &ExtractionResult{
		Features: projected.Features,
		Projects: len(resolved.ProjectIDs),
		Fetched:  len(fetched.Tasks),
		Excluded: projected.Excluded,
	}

	// Step 4: Classify, optional
	if input.Classify && len(projected.Features) > 0 {
		var classified activities.FeaturesResult
		err = workflow.ExecuteActivity(ctx, a.ClassifyFeatures, projected.Features).Get(ctx, &classified)
		if err != nil {
			logger.Error("failed to classify features", "error", err)
			return nil, err
		}
		result.Features = classified.Features
		result.Excluded += classified.Excluded
	}

	logger.Info("extraction workflow completed",
		"projects", result.Projects,
		"fetched", result.Fetched,
		"emitted", len(result.Features),
	)
	return result, nil
}
