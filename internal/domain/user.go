package domain

// User is a backend account. It is read-only from the planner's side.
type User struct {
	ID    int64
	Login string
	Name  string
}

// Assignee is an entry of the configured assignee directory.
type Assignee struct {
	DisplayName string `yaml:"name"`
	Login       string `yaml:"login"`
}
