package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veilio/veil/internal/config"
	"github.com/veilio/veil/internal/provider"
	"github.com/veilio/veil/internal/router"
)

// environment bundles everything a command needs after configuration has
// been loaded: the populated registry, the selector built on top of it,
// and the parsed config for anything else.
type environment struct {
	Config   *config.Config
	Registry *provider.Registry
	Selector *router.Selector
}

// loadEnvironment loads the configuration file, builds and initializes
// the provider registry, and constructs a selector wired with the
// configured references and scoring policy.
func loadEnvironment(ctx context.Context, opts *RootOptions) (*environment, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	reg := cfg.Registry()
	for _, p := range reg.List() {
		if err := p.Init(ctx); err != nil {
			return nil, fmt.Errorf("init provider %q: %w", p.Descriptor().ID, err)
		}
	}
	slog.Debug("providers initialized", "count", reg.Len())

	sel := router.NewSelector(reg,
		router.WithReferences(cfg.References()),
		router.WithScoring(cfg.ScoringPolicy()),
	)

	return &environment{Config: cfg, Registry: reg, Selector: sel}, nil
}
