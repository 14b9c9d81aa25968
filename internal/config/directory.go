package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/sprintdesk/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultDirectoryFile is read from the working directory when
// SPRINTDESK_DIRECTORY is not set.
const DefaultDirectoryFile = "sprintdesk.yaml"

func DefaultDirectory() Directory {
	return Directory{
		ProjectManager: "Project Manager",
		Categories:     []domain.Category{"R&D", "Client Projects", "Internal Development"},
	}
}

// LoadDirectory parses a YAML directory file. Missing sections keep
// their defaults.
func LoadDirectory(path string) (Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Directory{}, fmt.Errorf("reading directory file: %w", err)
	}
	dir := DefaultDirectory()
	var parsed Directory
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Directory{}, fmt.Errorf("parsing directory file %s: %w", path, err)
	}
	if parsed.ProjectManager != "" {
		dir.ProjectManager = parsed.ProjectManager
	}
	if len(parsed.Categories) > 0 {
		dir.Categories = parsed.Categories
	}
	dir.Assignees = parsed.Assignees
	return dir, nil
}

// Validate rejects empty or repeated categories and incomplete assignees.
func (d Directory) Validate() error {
	if len(d.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	seen := make(map[domain.Category]bool, len(d.Categories))
	for _, c := range d.Categories {
		if strings.TrimSpace(string(c)) == "" {
			return fmt.Errorf("category names must not be empty")
		}
		if seen[c] {
			return fmt.Errorf("category %q is listed twice", c)
		}
		seen[c] = true
	}
	names := make(map[string]bool, len(d.Assignees))
	for _, a := range d.Assignees {
		if a.DisplayName == "" || a.Login == "" {
			return fmt.Errorf("assignee entries need a name and a login")
		}
		if names[a.DisplayName] {
			return fmt.Errorf("assignee %q is listed twice", a.DisplayName)
		}
		names[a.DisplayName] = true
	}
	return nil
}

// LoginFor maps an assignee display name or login to a backend login.
// ok is false when the value is neither.
func (d Directory) LoginFor(nameOrLogin string) (string, bool) {
	v := strings.TrimSpace(nameOrLogin)
	for _, a := range d.Assignees {
		if a.DisplayName == v || a.Login == v {
			return a.Login, true
		}
	}
	return "", false
}

// ResolveLogins maps each entry through LoginFor. Unknown entries are
// passed through unchanged and reported; the backend decides whether
// they resolve.
func (d Directory) ResolveLogins(entries []string) (logins []string, unknown []string) {
	for _, e := range domain.UniqueStrings(entries) {
		if login, ok := d.LoginFor(e); ok {
			logins = append(logins, login)
			continue
		}
		unknown = append(unknown, e)
		logins = append(logins, e)
	}
	return domain.UniqueStrings(logins), unknown
}

// HasCategory reports whether c is a configured category.
func (d Directory) HasCategory(c domain.Category) bool {
	for _, cat := range d.Categories {
		if cat == c {
			return true
		}
	}
	return false
}
