// Package memory implements the store contract over an in-memory snapshot,
// typically a JSON export of the production database.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// Snapshot is a point-in-time dump of the collections the extractor reads
type Snapshot struct {
	Organizations []types.Organization `json:"organizations"`
	Teams         []types.Team         `json:"teams"`
	Projects      []types.Project      `json:"projects"`
	Tasks         []types.Task         `json:"tasks"`
}

// Store serves reads from a snapshot. It is safe for concurrent reads.
type Store struct {
	orgs     map[string]types.Organization
	teams    map[string]types.Team
	projects map[string]types.Project
	tasks    []types.Task
}

var _ store.Store = (*Store)(nil)

// New indexes a snapshot. When several organizations share a name the first wins.
func New(snap Snapshot) *Store {
	s := &Store{
		orgs:     make(map[string]types.Organization, len(snap.Organizations)),
		teams:    make(map[string]types.Team, len(snap.Teams)),
		projects: make(map[string]types.Project, len(snap.Projects)),
		tasks:    slices.Clone(snap.Tasks),
	}
	for _, org := range snap.Organizations {
		if _, ok := s.orgs[org.Name]; !ok {
			s.orgs[org.Name] = org
		}
	}
	for _, team := range snap.Teams {
		s.teams[team.ID] = team
	}
	for _, project := range snap.Projects {
		s.projects[project.ID] = project
	}
	return s
}

// Load decodes a JSON snapshot from r
func Load(r io.Reader) (*Store, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return New(snap), nil
}

// OrganizationByName implements store.OrganizationReader
func (s *Store) OrganizationByName(ctx context.Context, name string) (types.Organization, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.Organization{}, false, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	org, ok := s.orgs[name]
	return org, ok, nil
}

// TeamsByIDs implements store.TeamReader
func (s *Store) TeamsByIDs(ctx context.Context, ids []string) ([]types.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	return lookup(s.teams, ids), nil
}

// ProjectsByIDs implements store.ProjectReader
func (s *Store) ProjectsByIDs(ctx context.Context, ids []string) ([]types.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	return lookup(s.projects, ids), nil
}

// Tasks implements store.TaskReader
func (s *Store) Tasks(ctx context.Context, query store.TaskQuery) ([]types.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	var out []types.Task
	for _, task := range s.tasks {
		if task.Status != query.Status || !slices.Contains(query.ProjectIDs, task.ProjectID) {
			continue
		}
		out = append(out, task)
	}
	slices.SortStableFunc(out, func(a, b types.Task) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func lookup[T any](index map[string]T, ids []string) []T {
	out := make([]T, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if v, ok := index[id]; ok {
			out = append(out, v)
		}
	}
	return out
}
