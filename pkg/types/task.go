package types

import (
	"time"
)

// Priority values as stored on a task
const (
	PriorityNone   = "none"
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// StatusAccepted is the status a task must carry to be extracted
const StatusAccepted = "Accepted"

// Task represents a raw task record as read from the store
type Task struct {
	ID                   string       `json:"_id"`
	ProjectID            string       `json:"project,omitempty"`
	Status               string       `json:"status,omitempty"`
	Title                string       `json:"title"`
	Body                 string       `json:"body"`
	Labels               []string     `json:"labels"`
	Priority             string       `json:"priority"`
	Points               *Points      `json:"points"`
	StatusEdits          []StatusEdit `json:"statusEdits"`
	PointsEstimatedEdits []PointsEdit `json:"pointsEstimatedEdits"`
	PointsBurnedEdits    []PointsEdit `json:"pointsBurnedEdits"`
	DueDate              *time.Time   `json:"dueDate"`
	Comments             []Comment    `json:"comments"`
	Commits              []Commit     `json:"commits"`
	Assignees            []string     `json:"assignees"`
	UpdatedAt            time.Time    `json:"updatedAt,omitempty"`
}

// Points holds the estimated and burned points of a task
type Points struct {
	Total float64 `json:"total"`
	Done  float64 `json:"done"`
}

// StatusEdit records a single workflow stage change
type StatusEdit struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// PointsEdit records a single change of a points value
type PointsEdit struct {
	FromPoints float64   `json:"fromPoints"`
	ToPoints   float64   `json:"toPoints"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Comment is a comment left on a task
type Comment struct {
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Commit is a commit linked to a task
type Commit struct {
	ID      string       `json:"commitId,omitempty"`
	Message string       `json:"message"`
	Files   []FileChange `json:"files"`
}

// FileChange is a single file entry of a commit
type FileChange struct {
	Filename  string `json:"filename,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}
