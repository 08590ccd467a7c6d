// Package postgres implements the store contract on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

const connectMaxElapsed = 30 * time.Second

// DB is the subset of pgxpool.Pool the store needs (pgxmock in tests)
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads organizations, teams, projects and tasks from PostgreSQL
type Store struct {
	db     DB
	logger *zap.Logger
}

var _ store.Store = (*Store)(nil)

// NewStore creates a new store on top of db
func NewStore(db DB, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Connect opens a pool and waits for the server to answer a ping
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w: %w", store.ErrStoreUnavailable, err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = connectMaxElapsed
	err = backoff.RetryNotify(func() error {
		return pool.Ping(ctx)
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		logger.Warn("database not ready, retrying",
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w: %w", store.ErrStoreUnavailable, err)
	}
	return pool, nil
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// OrganizationByName implements store.OrganizationReader
func (s *Store) OrganizationByName(ctx context.Context, name string) (types.Organization, bool, error) {
	query, args, err := psql().
		Select("id", "name", "team_ids").
		From("organizations").
		Where(squirrel.Eq{"name": name}).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return types.Organization{}, false, fmt.Errorf("failed to build organization query: %w", err)
	}

	var org types.Organization
	if err := pgxscan.Get(ctx, s.db, &org, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return types.Organization{}, false, nil
		}
		return types.Organization{}, false, fmt.Errorf("failed to get organization %q: %w: %w", name, store.ErrStoreUnavailable, err)
	}
	return org, true, nil
}

// TeamsByIDs implements store.TeamReader
func (s *Store) TeamsByIDs(ctx context.Context, ids []string) ([]types.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := psql().
		Select("id", "name", "project_ids").
		From("teams").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build team query: %w", err)
	}

	var teams []types.Team
	if err := pgxscan.Select(ctx, s.db, &teams, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select teams: %w: %w", store.ErrStoreUnavailable, err)
	}
	return teams, nil
}

// ProjectsByIDs implements store.ProjectReader
func (s *Store) ProjectsByIDs(ctx context.Context, ids []string) ([]types.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := psql().
		Select("id", "name").
		From("projects").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build project query: %w", err)
	}

	var projects []types.Project
	if err := pgxscan.Select(ctx, s.db, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select projects: %w: %w", store.ErrStoreUnavailable, err)
	}
	return projects, nil
}

// Tasks implements store.TaskReader
func (s *Store) Tasks(ctx context.Context, q store.TaskQuery) ([]types.Task, error) {
	if len(q.ProjectIDs) == 0 {
		return nil, nil
	}
	query, args, err := psql().
		Select(store.TaskProjection...).
		From("tasks").
		Where(squirrel.Eq{"project_id": q.ProjectIDs}).
		Where(squirrel.Eq{"status": q.Status}).
		OrderBy("updated_at DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}

	var rows []taskRow
	if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w: %w", store.ErrStoreUnavailable, err)
	}

	tasks := make([]types.Task, 0, len(rows))
	for _, row := range rows {
		task, err := row.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	s.logger.Debug("selected tasks",
		zap.Int("projects", len(q.ProjectIDs)),
		zap.Int("tasks", len(tasks)),
	)
	return tasks, nil
}

// taskRow mirrors the projected task columns; nested documents are jsonb
type taskRow struct {
	ID                   string     `db:"id"`
	Title                string     `db:"title"`
	Body                 string     `db:"body"`
	Labels               []string   `db:"labels"`
	Priority             string     `db:"priority"`
	Points               []byte     `db:"points"`
	Comments             []byte     `db:"comments"`
	StatusEdits          []byte     `db:"status_edits"`
	PointsEstimatedEdits []byte     `db:"points_estimated_edits"`
	PointsBurnedEdits    []byte     `db:"points_burned_edits"`
	DueDate              *time.Time `db:"due_date"`
	Commits              []byte     `db:"commits"`
	Assignees            []string   `db:"assignees"`
}

func (r taskRow) toTask() (types.Task, error) {
	task := types.Task{
		ID:        r.ID,
		Title:     r.Title,
		Body:      r.Body,
		Labels:    r.Labels,
		Priority:  r.Priority,
		DueDate:   r.DueDate,
		Assignees: r.Assignees,
	}
	columns := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{store.FieldPoints, r.Points, &task.Points},
		{store.FieldComments, r.Comments, &task.Comments},
		{store.FieldStatusEdits, r.StatusEdits, &task.StatusEdits},
		{store.FieldPointsEstimatedEdits, r.PointsEstimatedEdits, &task.PointsEstimatedEdits},
		{store.FieldPointsBurnedEdits, r.PointsBurnedEdits, &task.PointsBurnedEdits},
		{store.FieldCommits, r.Commits, &task.Commits},
	}
	for _, col := range columns {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return types.Task{}, fmt.Errorf("failed to decode %s of task %s: %w", col.name, r.ID, err)
		}
	}
	return task, nil
}
