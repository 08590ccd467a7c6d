package workflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap/zaptest"

	"github.com/clintrovert/taskfeatures/internal/activities"
	"github.com/clintrovert/taskfeatures/internal/classifier"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/store/memory"
	"github.com/clintrovert/taskfeatures/internal/taxonomy"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

func testStore(tasks ...types.Task) *memory.Store {
	return memory.New(memory.Snapshot{
		Organizations: []types.Organization{{ID: "o1", Name: "acme", TeamIDs: []string{"t1"}}},
		Teams:         []types.Team{{ID: "t1", ProjectIDs: []string{"p1"}}},
		Projects:      []types.Project{{ID: "p1"}},
		Tasks:         tasks,
	})
}

func acceptedTask(id string, points *types.Points, at time.Time) types.Task {
	return types.Task{
		ID: id, ProjectID: "p1", Status: types.StatusAccepted,
		Title: "task " + id, Points: points, UpdatedAt: at,
	}
}

type staticClassifier struct{}

func (staticClassifier) Classify(_ context.Context, titles []string) (map[string]classifier.Classification, error) {
	out := make(map[string]classifier.Classification, len(titles))
	for _, title := range titles {
		out[title] = classifier.Classification{CodeRelated: title == "task a", Categories: []string{"Feature"}}
	}
	return out, nil
}

func newEnv(t *testing.T, s *memory.Store, opts ...pipeline.Option) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()
	logger := zaptest.NewLogger(t)
	p := pipeline.New(s, taxonomy.Default(), logger, opts...)
	env.RegisterActivity(activities.NewExtractionActivities(p, logger))
	return env
}

func TestExtractFeaturesWorkflow(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Should run every step and return the features", func(t *testing.T) {
		env := newEnv(t, testStore(
			acceptedTask("a", &types.Points{Total: 2, Done: 1.3}, at),
			acceptedTask("b", &types.Points{}, at.Add(time.Hour)),
		))

		env.ExecuteWorkflow(ExtractFeaturesWorkflow, ExtractionInput{Organizations: []string{"acme"}})
		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var result *ExtractionResult
		require.NoError(t, env.GetWorkflowResult(&result))
		assert.Equal(t, 1, result.Projects)
		assert.Equal(t, 2, result.Fetched)
		assert.Equal(t, 1, result.Excluded)
		require.Len(t, result.Features, 1)
		assert.Equal(t, "a", result.Features[0].ID)
		assert.Equal(t, 1.5, result.Features[0].BurnedPoints)
	})

	t.Run("Should classify when asked", func(t *testing.T) {
		env := newEnv(t, testStore(
			acceptedTask("a", &types.Points{Total: 1}, at),
			acceptedTask("b", &types.Points{Total: 1}, at.Add(time.Hour)),
		), pipeline.WithClassifier(staticClassifier{}, true))

		env.ExecuteWorkflow(ExtractFeaturesWorkflow, ExtractionInput{Organizations: []string{"acme"}, Classify: true})
		require.NoError(t, env.GetWorkflowError())

		var result *ExtractionResult
		require.NoError(t, env.GetWorkflowResult(&result))
		require.Len(t, result.Features, 1)
		assert.Equal(t, "a", result.Features[0].ID)
		assert.Equal(t, []string{"Feature"}, result.Features[0].Categories)
		assert.Equal(t, 1, result.Excluded)
	})

	t.Run("Should fail without retries on a malformed task", func(t *testing.T) {
		env := newEnv(t, testStore(acceptedTask("bad", nil, at)))
		attempts := 0
		env.SetOnActivityStartedListener(func(info *activity.Info, _ context.Context, _ converter.EncodedValues) {
			if info.ActivityType.Name == "ProjectFeatures" {
				attempts++
			}
		})

		env.ExecuteWorkflow(ExtractFeaturesWorkflow, ExtractionInput{Organizations: []string{"acme"}})
		require.True(t, env.IsWorkflowCompleted())

		err := env.GetWorkflowError()
		require.Error(t, err)
		var appErr *temporal.ApplicationError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, activities.ErrTypeMalformedTask, appErr.Type())
		assert.Equal(t, 1, attempts)
	})

	t.Run("Should reject an empty organization list", func(t *testing.T) {
		env := newEnv(t, testStore())

		env.ExecuteWorkflow(ExtractFeaturesWorkflow, ExtractionInput{})
		err := env.GetWorkflowError()
		require.Error(t, err)
		var appErr *temporal.ApplicationError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, activities.ErrTypeNoOrganizations, appErr.Type())
	})
}
