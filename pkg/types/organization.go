package types

// Organization groups teams by reference
type Organization struct {
	ID      string   `json:"_id" db:"id"`
	Name    string   `json:"name" db:"name"`
	TeamIDs []string `json:"teams" db:"team_ids"`
}

// Team groups projects by reference. Referenced projects may no longer exist.
type Team struct {
	ID         string   `json:"_id" db:"id"`
	Name       string   `json:"name" db:"name"`
	ProjectIDs []string `json:"projects" db:"project_ids"`
}

// Project is a live project record
type Project struct {
	ID   string `json:"_id" db:"id"`
	Name string `json:"name" db:"name"`
}
