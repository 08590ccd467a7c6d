// Package extract resolves organizations to projects and fetches their
// accepted tasks from the store.
package extract

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/store"
)

// ResolverStore is the part of the store the resolver reads
type ResolverStore interface {
	store.OrganizationReader
	store.TeamReader
	store.ProjectReader
}

// Resolver turns organization names into the set of live project ids
type Resolver struct {
	store  ResolverStore
	logger *zap.Logger
}

// NewResolver creates a new resolver
func NewResolver(s ResolverStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  s,
		logger: logger,
	}
}

// Resolve returns the sorted, de-duplicated ids of live projects reachable
// through the teams of the named organizations. Names, teams and projects
// that do not resolve contribute nothing.
func (r *Resolver) Resolve(ctx context.Context, orgNames []string) ([]string, error) {
	projectIDs := make(map[string]struct{})
	for _, name := range orgNames {
		ids, err := r.resolveOrganization(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			projectIDs[id] = struct{}{}
		}
	}

	out := make([]string, 0, len(projectIDs))
	for id := range projectIDs {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (r *Resolver) resolveOrganization(ctx context.Context, name string) ([]string, error) {
	org, ok, err := r.store.OrganizationByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up organization %q: %w", name, err)
	}
	if !ok {
		r.logger.Debug("organization not found", zap.String("organization", name))
		return nil, nil
	}

	teams, err := r.store.TeamsByIDs(ctx, org.TeamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up teams of %q: %w", name, err)
	}
	if missing := len(uniq(org.TeamIDs)) - len(teams); missing > 0 {
		r.logger.Debug("dangling team references",
			zap.String("organization", name),
			zap.Int("missing", missing),
		)
	}

	var candidates []string
	for _, team := range teams {
		candidates = append(candidates, team.ProjectIDs...)
	}
	candidates = uniq(candidates)
	if len(candidates) == 0 {
		return nil, nil
	}

	projects, err := r.store.ProjectsByIDs(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to look up projects of %q: %w", name, err)
	}
	if missing := len(candidates) - len(projects); missing > 0 {
		r.logger.Debug("dangling project references",
			zap.String("organization", name),
			zap.Int("missing", missing),
		)
	}

	ids := make([]string, 0, len(projects))
	for _, project := range projects {
		ids = append(ids, project.ID)
	}
	r.logger.Debug("resolved organization",
		zap.String("organization", name),
		zap.Int("teams", len(teams)),
		zap.Int("projects", len(ids)),
	)
	return ids, nil
}

// uniq keeps the first occurrence of every id
func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
