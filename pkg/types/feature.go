package types

// Feature is the flat, normalized record emitted for one task
type Feature struct {
	ID        string   `json:"_id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Assignees []string `json:"assignees"`

	Labels         []string `json:"labels"`
	NumberOfLabels int      `json:"numberOfLabels"`
	Priority       int      `json:"priority"`
	DueDate        int      `json:"dueDate"`

	ExpectedPoints    float64 `json:"expectedPoints"`
	BurnedPoints      float64 `json:"burnedPoints"`
	BurnedPointsClass int     `json:"burnedPointsClass"`

	PointsEstimatedNumberOfEdits        int     `json:"pointsEstimatedNumberOfEdits"`
	PointsEstimatedEditsTotalDifference float64 `json:"pointsEstimatedEditsTotalDifference"`
	PointsBurnedNumberOfEdits           int     `json:"pointsBurnedNumberOfEdits"`

	NumberOfComments int    `json:"numberOfComments"`
	Comments         string `json:"comments"`

	NumberOfCommits      int    `json:"numberOfCommits"`
	TotalAdditions       int    `json:"totalAdditions"`
	TotalDeletions       int    `json:"totalDeletions"`
	NumberOfFilesChanged int    `json:"numberOfFilesChanged"`
	CommitMessages       string `json:"commitMessages"`

	StatusDeviateFromFlow int `json:"statusDeviateFromFlow"`

	Categories []string `json:"categories,omitempty"`
	FocusAreas []string `json:"focus_areas,omitempty"`
}
