package cli

import (
	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/config"
)

// credentials resolves login and password. The sandbox backend falls
// back to its configured account.
func (a *App) credentials() backend.Credentials {
	creds := backend.Credentials{Login: a.flags.login, Password: a.Config.Password}
	if config.BackendKind(a.flags.backend) == config.BackendSandbox {
		if creds.Login == "" {
			creds.Login = a.Config.Sandbox.Login
		}
		if creds.Password == "" && creds.Login == a.Config.Sandbox.Login {
			creds.Password = a.Config.Sandbox.Password
		}
	}
	return creds
}
