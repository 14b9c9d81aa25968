package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/sprintdesk/internal/app"
	"github.com/alexanderramin/sprintdesk/internal/cli"
	"github.com/alexanderramin/sprintdesk/internal/cli/formatter"
	"github.com/alexanderramin/sprintdesk/internal/config"
	"github.com/alexanderramin/sprintdesk/internal/intelligence"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, formatter.RenderError(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Tag suggestions are advisory; the app runs without them.
	var suggester *intelligence.TagSuggester
	if analyzer, err := intelligence.NewProseAnalyzer(); err == nil {
		suggester = intelligence.NewTagSuggester(analyzer)
	} else {
		fmt.Fprintln(os.Stderr, formatter.Warning("tag suggestions disabled: "+err.Error()))
	}

	wiring := app.NewWiring(cfg, suggester)
	defer wiring.Close()

	a := &cli.App{
		Config:    cfg,
		Connect:   wiring.Connect,
		Suggester: suggester,
	}

	// Detect interactive terminal for the session entrypoint.
	a.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(a).Execute()
}
