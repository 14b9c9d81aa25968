package domain

import (
	"fmt"
	"strings"
)

// Project is the root of an authoring session. The backend assigns ID.
type Project struct {
	ID          int64
	Name        string
	Category    Category
	StageID     *int64
	Description string // rich text
}

// Validate checks the fields required before a project is sent to the backend.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name is required")
	}
	if strings.TrimSpace(string(p.Category)) == "" {
		return fmt.Errorf("project category is required")
	}
	return nil
}
