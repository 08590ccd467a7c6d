// Package pipeline runs an extraction end to end: resolve organizations,
// fetch accepted tasks, project them into features and optionally classify them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/classifier"
	"github.com/clintrovert/taskfeatures/internal/extract"
	"github.com/clintrovert/taskfeatures/internal/features"
	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/internal/taxonomy"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// ErrNoOrganizations is returned when a run is started without organizations
var ErrNoOrganizations = errors.New("no organizations given")

// Stats summarizes one run
type Stats struct {
	Organizations int
	Projects      int
	Fetched       int
	Excluded      int
	Emitted       int
}

// Recorder receives the outcome of every run
type Recorder interface {
	ObserveRun(stats Stats, elapsed time.Duration, err error)
}

// Pipeline wires the extraction stages together. Runs share no state and a
// Pipeline may serve concurrent runs.
type Pipeline struct {
	resolver   *extract.Resolver
	fetcher    *extract.Fetcher
	taxonomy   *taxonomy.Taxonomy
	classifier classifier.Classifier
	codeOnly   bool
	recorder   Recorder
	logger     *zap.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClassifier enables classification. With codeOnly set only tasks
// classified as code related are emitted.
func WithClassifier(c classifier.Classifier, codeOnly bool) Option {
	return func(p *Pipeline) {
		p.classifier = c
		p.codeOnly = codeOnly
	}
}

// WithRecorder reports run statistics to r
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// New creates a new pipeline reading from s
func New(s store.Store, tx *taxonomy.Taxonomy, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: extract.NewResolver(s, logger),
		fetcher:  extract.NewFetcher(s, logger),
		taxonomy: tx,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run extracts the feature records of the given organizations. Any store
// failure or malformed task aborts the run without partial output.
func (p *Pipeline) Run(ctx context.Context, orgs []string) (out []types.Feature, err error) {
	var stats Stats
	started := time.Now()
	defer func() {
		if p.recorder != nil {
			p.recorder.ObserveRun(stats, time.Since(started), err)
		}
	}()

	if len(orgs) == 0 {
		return nil, ErrNoOrganizations
	}
	stats.Organizations = len(orgs)

	projectIDs, err := p.Resolve(ctx, orgs)
	if err != nil {
		return nil, err
	}
	stats.Projects = len(projectIDs)

	tasks, err := p.Fetch(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	stats.Fetched = len(tasks)

	out, err = p.Transform(tasks)
	if err != nil {
		return nil, err
	}
	stats.Excluded = len(tasks) - len(out)

	out, err = p.Classify(ctx, out)
	if err != nil {
		return nil, err
	}
	stats.Emitted = len(out)

	p.logger.Info("extraction finished",
		zap.Strings("organizations", orgs),
		zap.Int("projects", stats.Projects),
		zap.Int("fetched", stats.Fetched),
		zap.Int("excluded", stats.Excluded),
		zap.Int("emitted", stats.Emitted),
	)
	return out, nil
}

// Resolve returns the live project ids of the organizations
func (p *Pipeline) Resolve(ctx context.Context, orgs []string) ([]string, error) {
	return p.resolver.Resolve(ctx, orgs)
}

// Fetch returns the accepted tasks of the projects
func (p *Pipeline) Fetch(ctx context.Context, projectIDs []string) ([]types.Task, error) {
	return p.fetcher.Fetch(ctx, projectIDs)
}

// Transform projects tasks into features, keeping fetch order and leaving
// out tasks without points
func (p *Pipeline) Transform(tasks []types.Task) ([]types.Feature, error) {
	projector := features.NewProjector(p.taxonomy)
	out := make([]types.Feature, 0, len(tasks))
	for _, task := range tasks {
		feature, ok, err := projector.Project(task)
		if err != nil {
			return nil, fmt.Errorf("failed to project task: %w", err)
		}
		if !ok {
			p.logger.Debug("excluding task without points", zap.String("task_id", task.ID))
			continue
		}
		out = append(out, feature)
	}
	return out, nil
}

// Classify attaches categories and focus areas when a classifier is set
func (p *Pipeline) Classify(ctx context.Context, in []types.Feature) ([]types.Feature, error) {
	if p.classifier == nil || len(in) == 0 {
		return in, nil
	}

	titles := make([]string, len(in))
	for i, f := range in {
		titles[i] = f.Title
	}
	classes, err := p.classifier.Classify(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("failed to classify tasks: %w", err)
	}

	out := make([]types.Feature, 0, len(in))
	for _, f := range in {
		c, ok := classes[f.Title]
		if p.codeOnly && (!ok || !c.CodeRelated) {
			continue
		}
		f.Categories = append([]string{}, c.Categories...)
		f.FocusAreas = append([]string{}, c.FocusAreas...)
		out = append(out, f)
	}
	return out, nil
}
