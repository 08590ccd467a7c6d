package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clintrovert/taskfeatures/internal/features"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/internal/store/memory"
	"github.com/clintrovert/taskfeatures/internal/taxonomy"
	"github.com/clintrovert/taskfeatures/internal/temporal/workflows"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

type failingRunner struct {
	err error
}

func (f failingRunner) Run(context.Context, []string) ([]types.Feature, error) {
	return nil, f.err
}

type fakeStarter struct {
	started []string
	result  *workflows.ExtractionResult
	err     error
	cancels []string
}

func (f *fakeStarter) StartExtraction(_ context.Context, orgs []string) (string, error) {
	if len(orgs) == 0 {
		return "", pipeline.ErrNoOrganizations
	}
	f.started = orgs
	return "extraction-1", f.err
}

func (f *fakeStarter) ExtractionResult(_ context.Context, _ string) (*workflows.ExtractionResult, error) {
	return f.result, f.err
}

func (f *fakeStarter) CancelExtraction(_ context.Context, id string) error {
	f.cancels = append(f.cancels, id)
	return f.err
}

func testPipeline(t *testing.T) *pipeline.Pipeline {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := memory.New(memory.Snapshot{
		Organizations: []types.Organization{{ID: "o1", Name: "acme", TeamIDs: []string{"t1"}}},
		Teams:         []types.Team{{ID: "t1", ProjectIDs: []string{"p1"}}},
		Projects:      []types.Project{{ID: "p1"}},
		Tasks: []types.Task{
			{ID: "a", ProjectID: "p1", Status: types.StatusAccepted, Title: "a", Points: &types.Points{Total: 1}, UpdatedAt: at},
			{ID: "b", ProjectID: "p1", Status: types.StatusAccepted, Title: "b", Points: &types.Points{Total: 2}, UpdatedAt: at.Add(time.Hour)},
		},
	})
	return pipeline.New(s, taxonomy.Default(), zaptest.NewLogger(t))
}

func serve(t *testing.T, h *Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	NewRouter(h, nil).ServeHTTP(rec, req)
	return rec
}

func TestHandler_GetFeatures(t *testing.T) {
	t.Run("Should return a JSON array", func(t *testing.T) {
		h := NewHandler(testPipeline(t), nil, zaptest.NewLogger(t))

		rec := serve(t, h, http.MethodGet, "/api/v1/features?org=acme", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var out []types.Feature
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		require.Len(t, out, 2)
		assert.Equal(t, "b", out[0].ID)
	})

	t.Run("Should return JSON lines", func(t *testing.T) {
		h := NewHandler(testPipeline(t), nil, zaptest.NewLogger(t))

		rec := serve(t, h, http.MethodGet, "/api/v1/features?org=acme&format=jsonl", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
		assert.Len(t, strings.Split(strings.TrimSpace(rec.Body.String()), "\n"), 2)
	})

	t.Run("Should map errors to status codes", func(t *testing.T) {
		cases := []struct {
			err  error
			code int
		}{
			{pipeline.ErrNoOrganizations, http.StatusBadRequest},
			{fmt.Errorf("failed to project task: %w", &features.MalformedTaskError{TaskID: "x"}), http.StatusUnprocessableEntity},
			{fmt.Errorf("x: %w", store.ErrStoreUnavailable), http.StatusServiceUnavailable},
			{errors.New("boom"), http.StatusInternalServerError},
		}
		for _, tc := range cases {
			h := NewHandler(failingRunner{err: tc.err}, nil, zaptest.NewLogger(t))
			rec := serve(t, h, http.MethodGet, "/api/v1/features?org=acme", "")
			assert.Equal(t, tc.code, rec.Code, tc.err.Error())

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		}
	})

	t.Run("Should reject an unknown format", func(t *testing.T) {
		h := NewHandler(testPipeline(t), nil, zaptest.NewLogger(t))
		rec := serve(t, h, http.MethodGet, "/api/v1/features?org=acme&format=csv", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should require an organization", func(t *testing.T) {
		h := NewHandler(testPipeline(t), nil, zaptest.NewLogger(t))
		rec := serve(t, h, http.MethodGet, "/api/v1/features", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Extractions(t *testing.T) {
	t.Run("Should start an extraction", func(t *testing.T) {
		starter := &fakeStarter{}
		h := NewHandler(testPipeline(t), starter, zaptest.NewLogger(t))

		rec := serve(t, h, http.MethodPost, "/api/v1/extractions", `{"organizations":["acme"]}`)
		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp StartExtractionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "extraction-1", resp.WorkflowID)
		assert.Equal(t, []string{"acme"}, starter.started)
	})

	t.Run("Should reject bad bodies and empty organization lists", func(t *testing.T) {
		h := NewHandler(testPipeline(t), &fakeStarter{}, zaptest.NewLogger(t))

		assert.Equal(t, http.StatusBadRequest, serve(t, h, http.MethodPost, "/api/v1/extractions", `{`).Code)
		assert.Equal(t, http.StatusBadRequest, serve(t, h, http.MethodPost, "/api/v1/extractions", `{"organizations":[]}`).Code)
	})

	t.Run("Should return the finished extraction", func(t *testing.T) {
		starter := &fakeStarter{result: &workflows.ExtractionResult{
			Features: []types.Feature{{ID: "a"}},
			Projects: 1,
			Fetched:  2,
			Excluded: 1,
		}}
		h := NewHandler(testPipeline(t), starter, zaptest.NewLogger(t))

		rec := serve(t, h, http.MethodGet, "/api/v1/extractions/extraction-1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ExtractionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "extraction-1", resp.WorkflowID)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, 2, resp.Fetched)
		require.Len(t, resp.Features, 1)
	})

	t.Run("Should report a failed extraction", func(t *testing.T) {
		starter := &fakeStarter{err: fmt.Errorf("failed: %w", features.ErrMalformedTask)}
		h := NewHandler(testPipeline(t), starter, zaptest.NewLogger(t))

		rec := serve(t, h, http.MethodGet, "/api/v1/extractions/extraction-1", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("Should cancel an extraction", func(t *testing.T) {
		starter := &fakeStarter{}
		h := NewHandler(testPipeline(t), starter, zaptest.NewLogger(t))

		rec := serve(t, h, http.MethodDelete, "/api/v1/extractions/extraction-1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{"extraction-1"}, starter.cancels)
	})

	t.Run("Should not mount extraction routes without a starter", func(t *testing.T) {
		h := NewHandler(testPipeline(t), nil, zaptest.NewLogger(t))
		rec := serve(t, h, http.MethodPost, "/api/v1/extractions", `{"organizations":["acme"]}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNewRouter(t *testing.T) {
	t.Run("Should serve health and metrics", func(t *testing.T) {
		h := NewHandler(testPipeline(t), nil, zaptest.NewLogger(t))
		metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})
		router := NewRouter(h, metrics)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, "ok", rec.Body.String())
	})
}
