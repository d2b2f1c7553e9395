package model

// Project is the client-side projection of a server project.
// The server assigns ID; this layer never edits or deletes projects.
type Project struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewProject is the body sent when creating a project.
type NewProject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectName returns the name of the project with the given id, or "".
func ProjectName(projects []Project, id string) string {
	for _, p := range projects {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}
