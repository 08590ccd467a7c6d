package activities

import (
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// Application error types reported by the extraction activities
const (
	ErrTypeNoOrganizations  = "NoOrganizations"
	ErrTypeMalformedTask    = "MalformedTask"
	ErrTypeStoreUnavailable = "StoreUnavailable"
)

// ResolveResult contains the projects of the requested organizations
type ResolveResult struct {
	ProjectIDs []string
}

// FetchResult contains the accepted tasks of the resolved projects
type FetchResult struct {
	Tasks []types.Task
}

// FeaturesResult contains projected or classified features
type FeaturesResult struct {
	Features []types.Feature
	Excluded int
}
