// Command personas inspects, validates and maintains the subagent persona
// catalog.
//
// Personas come from the embedded catalog, optional JSON/JSON5 persona files
// and the user and project persona directories, merged in that order of
// increasing priority.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selvaggiesteban/hands-on-ai-sub000/pkg/catalog"
	"github.com/selvaggiesteban/hands-on-ai-sub000/pkg/config"
	"github.com/selvaggiesteban/hands-on-ai-sub000/pkg/logging"
	"github.com/selvaggiesteban/hands-on-ai-sub000/pkg/persona"
)

// app carries the state shared by every subcommand.
type app struct {
	// Global flags
	configPath   string
	verbose      bool
	output       string
	embeddedOnly bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "personas",
		Short: "Browse and maintain the subagent persona catalog",
		Long: `personas serves a catalog of named subagent personas ("backend-developer",
"security-auditor", ...). Each persona carries a description, the tools it may
use, and the system prompt an agent runtime should run it with.

Definitions are merged from the embedded catalog, persona files listed in the
config (extra_personas), the user directory and the project directory, later
sources overriding earlier ones.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $PERSONAS_CONFIG or <user config dir>/personas/config.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&a.output, "output", "o", formatTable, "output format: table, json or yaml")
	flags.BoolVar(&a.embeddedOnly, "embedded-only", false, "ignore persona directories and files, use only the embedded catalog")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newMatchCmd(a),
		newWatchCmd(a),
		newToolsCmd(a),
	)
	return root
}

// init loads configuration and builds the logger.
func (a *app) init() error {
	switch a.output {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unsupported output format %q", a.output)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	a.logger, err = logging.New(level, cfg.LogFormat)
	if err != nil {
		return err
	}

	for alias, model := range cfg.ModelAliases {
		persona.RegisterModelAlias(alias, model)
	}
	if cfg.Path != "" {
		a.logger.Debug("loaded config", zap.String("path", cfg.Path))
	}
	return nil
}

// openStore builds a persona store from the embedded catalog and the
// configured sources. onReload may be nil.
func (a *app) openStore(onReload func(*persona.Registry)) (*persona.Store, error) {
	embedded, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("loading embedded catalog: %w", err)
	}

	opts := persona.StoreOptions{
		Embedded:      embedded,
		DisabledTools: a.cfg.DisabledTools,
		OnReload:      onReload,
		Logger:        a.logger,
	}
	if !a.embeddedOnly {
		opts.PersonaFiles = a.cfg.ExtraPersonas
		opts.Loader = persona.NewLoader(a.cfg.UserDir, a.cfg.ProjectDir, a.logger)
	}
	return persona.NewStore(opts)
}

// registry is openStore for commands that only need one snapshot.
func (a *app) registry() (*persona.Registry, error) {
	store, err := a.openStore(nil)
	if err != nil {
		return nil, err
	}
	return store.Registry(), nil
}
