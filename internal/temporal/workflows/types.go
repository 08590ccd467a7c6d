package workflows

import (
	"github.com/clintrovert/taskfeatures/pkg/types"
)

// ExtractionInput is the input for the extraction workflow
type ExtractionInput struct {
	Organizations []string
	// Classify runs the classification step after projection
	Classify bool
}

// ExtractionResult is the output of the extraction workflow
type ExtractionResult struct {
	Features []types.Feature
	Projects int
	Fetched  int
	Excluded int
}
