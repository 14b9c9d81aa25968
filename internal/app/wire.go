// Package app wires configuration into a backend and the services on top
// of it. The CLI asks it for an orchestrator once flags are parsed.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/alexanderramin/sprintdesk/internal/backend"
	"github.com/alexanderramin/sprintdesk/internal/backend/odoo"
	"github.com/alexanderramin/sprintdesk/internal/cli"
	"github.com/alexanderramin/sprintdesk/internal/config"
	"github.com/alexanderramin/sprintdesk/internal/db"
	"github.com/alexanderramin/sprintdesk/internal/intelligence"
	"github.com/alexanderramin/sprintdesk/internal/repository"
	"github.com/alexanderramin/sprintdesk/internal/service"
)

// Wiring builds backends on demand and owns the sandbox database.
type Wiring struct {
	cfg       *config.Config
	suggester *intelligence.TagSuggester

	mu      sync.Mutex
	sandbox *sql.DB
}

func NewWiring(cfg *config.Config, suggester *intelligence.TagSuggester) *Wiring {
	return &Wiring{cfg: cfg, suggester: suggester}
}

// Connect implements cli.Connector.
func (w *Wiring) Connect(opts cli.ConnectOptions) (*service.Authoring, error) {
	b, err := w.Backend(context.Background(), opts.Backend, callObserver(w.cfg.LogCalls || opts.Verbose, opts.Log))
	if err != nil {
		return nil, err
	}

	var observers []service.UseCaseObserver
	if w.cfg.LogUseCases || opts.Verbose {
		observers = append(observers, service.NewLogUseCaseObserver(opts.Log))
	}
	gateway := service.NewGateway(b, observers...)
	return service.NewAuthoring(gateway, w.suggester, w.cfg.Directory.Categories, observers...).WithTagTopN(w.cfg.TagTopN), nil
}

// Backend returns the backend of the given kind.
func (w *Wiring) Backend(ctx context.Context, kind config.BackendKind, observer odoo.Observer) (backend.Backend, error) {
	switch kind {
	case config.BackendOdoo:
		if w.cfg.Odoo.URL == "" || w.cfg.Odoo.Database == "" {
			return nil, fmt.Errorf("odoo backend needs SPRINTDESK_URL and SPRINTDESK_DB")
		}
		return odoo.NewClient(w.cfg.Odoo, observer), nil
	case config.BackendSandbox:
		return w.sandboxBackend(ctx)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// sandboxBackend opens and seeds the sandbox database once.
func (w *Wiring) sandboxBackend(ctx context.Context) (*repository.SQLiteBackend, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sandbox != nil {
		return repository.NewSQLiteBackend(w.sandbox), nil
	}

	database, err := db.OpenDB(w.cfg.Sandbox.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sandbox: %w", err)
	}
	b := repository.NewSQLiteBackend(database)
	if err := w.seed(ctx, b); err != nil {
		database.Close()
		return nil, err
	}
	w.sandbox = database
	return b, nil
}

func (w *Wiring) seed(ctx context.Context, b *repository.SQLiteBackend) error {
	sb := w.cfg.Sandbox
	if err := b.SeedAccount(ctx, sb.Login, sb.Name, sb.Password); err != nil {
		return err
	}
	if err := b.SeedStages(ctx, w.cfg.StageNames()); err != nil {
		return err
	}
	return b.SeedUsers(ctx, w.cfg.Directory.Assignees)
}

// Close releases the sandbox database when one was opened.
func (w *Wiring) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sandbox == nil {
		return nil
	}
	err := w.sandbox.Close()
	w.sandbox = nil
	return err
}

func callObserver(enabled bool, out io.Writer) odoo.Observer {
	if !enabled || out == nil {
		return odoo.NoopObserver{}
	}
	return odoo.NewLogObserver(out)
}
