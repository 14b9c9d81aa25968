package testutil

import (
	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/domain"
)

const (
	TestLogin    = "pm@example.com"
	TestPassword = "sandbox"
)

func TestCredentials() backend.Credentials {
	return backend.Credentials{Login: TestLogin, Password: TestPassword}
}

func TestCategories() []domain.Category {
	return []domain.Category{"R&D", "Client Projects", "Internal Development"}
}

func TestCategoryNames() []string {
	cats := TestCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

func TestDirectory() []domain.Assignee {
	return []domain.Assignee{
		{DisplayName: "Ana Silva", Login: "ana@example.com"},
		{DisplayName: "Ben Okafor", Login: "ben@example.com"},
		{DisplayName: "Chen Wei", Login: "chen@example.com"},
	}
}
