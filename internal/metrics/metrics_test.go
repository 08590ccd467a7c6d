package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clintrovert/taskfeatures/internal/features"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/store"
)

func TestRecorder_ObserveRun(t *testing.T) {
	t.Run("Should count runs and tasks", func(t *testing.T) {
		r, err := NewRecorder(prometheus.NewRegistry())
		require.NoError(t, err)

		r.ObserveRun(pipeline.Stats{Fetched: 10, Excluded: 3, Emitted: 7}, time.Second, nil)
		r.ObserveRun(pipeline.Stats{Fetched: 5}, time.Second, fmt.Errorf("x: %w", store.ErrStoreUnavailable))

		assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(OutcomeSuccess)))
		assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(OutcomeStoreUnavailable)))
		assert.Equal(t, 10.0, testutil.ToFloat64(r.tasks.WithLabelValues("fetched")))
		assert.Equal(t, 3.0, testutil.ToFloat64(r.tasks.WithLabelValues("excluded")))
		assert.Equal(t, 7.0, testutil.ToFloat64(r.tasks.WithLabelValues("emitted")))
	})

	t.Run("Should refuse double registration", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := NewRecorder(reg)
		require.NoError(t, err)
		_, err = NewRecorder(reg)
		assert.Error(t, err)
	})
}

func TestOutcome(t *testing.T) {
	t.Run("Should classify run errors", func(t *testing.T) {
		assert.Equal(t, OutcomeSuccess, Outcome(nil))
		assert.Equal(t, OutcomeMalformedTask, Outcome(&features.MalformedTaskError{TaskID: "t"}))
		assert.Equal(t, OutcomeStoreUnavailable, Outcome(fmt.Errorf("a: %w", store.ErrStoreUnavailable)))
		assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
	})
}

func TestHandler(t *testing.T) {
	t.Run("Should expose recorded runs", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		r, err := NewRecorder(reg)
		require.NoError(t, err)
		r.ObserveRun(pipeline.Stats{Emitted: 1}, time.Millisecond, nil)

		rec := httptest.NewRecorder()
		Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), `taskfeatures_runs_total{outcome="success"} 1`))
	})
}
