// Package classifier labels tasks by title using a language model.
package classifier

import (
	"context"
	"slices"
)

// Allowed answer vocabularies
var (
	Categories = []string{
		"Bug Fixes",
		"Testing & Code Review",
		"Optimization",
		"Feature",
		"Code Refactoring",
		"Dependencies",
		"Documentation & General",
	}
	FocusAreas = []string{
		"Frontend",
		"Backend",
		"DevOps & Cloud",
		"Database",
		"Security",
		"AI",
		"Embedded",
	}
)

// Classification is the answer for one task title
type Classification struct {
	CodeRelated bool
	Categories  []string
	FocusAreas  []string
}

// Classifier interface for labelling task titles
type Classifier interface {
	// Classify returns a classification per title. Titles the model could not
	// answer for within the vocabularies are absent from the map.
	Classify(ctx context.Context, titles []string) (map[string]Classification, error)
}

func valid(c Classification) bool {
	for _, category := range c.Categories {
		if !slices.Contains(Categories, category) {
			return false
		}
	}
	for _, area := range c.FocusAreas {
		if !slices.Contains(FocusAreas, area) {
			return false
		}
	}
	return true
}
