// Package store defines the read contract the extractor expects from a
// project-management data store.
package store

import (
	"context"
	"errors"

	"github.com/clintrovert/taskfeatures/pkg/types"
)

// ErrStoreUnavailable wraps any failure to reach or query the store
var ErrStoreUnavailable = errors.New("store unavailable")

// Task fields returned by a task query
const (
	FieldID                   = "id"
	FieldTitle                = "title"
	FieldBody                 = "body"
	FieldLabels               = "labels"
	FieldPriority             = "priority"
	FieldPoints               = "points"
	FieldComments             = "comments"
	FieldStatusEdits          = "status_edits"
	FieldPointsEstimatedEdits = "points_estimated_edits"
	FieldPointsBurnedEdits    = "points_burned_edits"
	FieldDueDate              = "due_date"
	FieldCommits              = "commits"
	FieldAssignees            = "assignees"
)

// TaskProjection is the fixed field subset of an extracted task
var TaskProjection = []string{
	FieldID,
	FieldTitle,
	FieldBody,
	FieldLabels,
	FieldPriority,
	FieldPoints,
	FieldComments,
	FieldStatusEdits,
	FieldPointsEstimatedEdits,
	FieldPointsBurnedEdits,
	FieldDueDate,
	FieldCommits,
	FieldAssignees,
}

// TaskQuery selects tasks for extraction. Results are ordered by last update,
// newest first, then by id.
type TaskQuery struct {
	ProjectIDs []string
	Status     string
}

// OrganizationReader looks up organizations by name
type OrganizationReader interface {
	// OrganizationByName returns false when no organization has that name
	OrganizationByName(ctx context.Context, name string) (types.Organization, bool, error)
}

// TeamReader looks up teams. Ids without a record are left out of the result.
type TeamReader interface {
	TeamsByIDs(ctx context.Context, ids []string) ([]types.Team, error)
}

// ProjectReader looks up projects. Ids without a record are left out of the result.
type ProjectReader interface {
	ProjectsByIDs(ctx context.Context, ids []string) ([]types.Project, error)
}

// TaskReader runs task queries
type TaskReader interface {
	Tasks(ctx context.Context, query TaskQuery) ([]types.Task, error)
}

// Store is the full read surface used by a pipeline run
type Store interface {
	OrganizationReader
	TeamReader
	ProjectReader
	TaskReader
}
