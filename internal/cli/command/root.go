// Package command provides CLI command definitions for diskemb-cli.
package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/diskemb-go/internal/cli/config"
	"github.com/yndnr/diskemb-go/internal/infra/buildinfo"
	"github.com/yndnr/diskemb-go/internal/storage"
	"github.com/yndnr/diskemb-go/internal/telemetry/logger"
	"github.com/yndnr/diskemb-go/internal/telemetry/metric"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "diskemb-cli",
		Usage:   "DiskEmb embedding-table management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TableCommand(),
			SnapshotCommand(),
			NamespaceCommand(),
			StatsCommand(),
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (YAML)",
			EnvVars: []string{"DISKEMB_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Store directory",
			EnvVars: []string{"DISKEMB_DIR"},
		},
		&cli.BoolFlag{
			Name:    "read-only",
			Usage:   "Open the store read-only",
			EnvVars: []string{"DISKEMB_READONLY"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn, error",
			EnvVars: []string{"DISKEMB_LOG_LEVEL"},
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// env bundles the opened store with the effective configuration.
type env struct {
	store    *storage.Store
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.TableMetrics
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		PrintError("close store: %v", err)
	}
}

// openEnv loads configuration, applies flag overrides and opens the store.
func openEnv(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("dir") {
		cfg.Store.Dir = c.String("dir")
	}
	if c.IsSet("read-only") {
		cfg.Store.ReadOnly = c.Bool("read-only")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	scfg := storage.DefaultConfig(cfg.Store.Dir)
	scfg.ReadOnly = cfg.Store.ReadOnly
	scfg.SyncWrites = cfg.Store.SyncWrites
	if cfg.Store.CacheSize > 0 {
		scfg.CacheSize = cfg.Store.CacheSize
	}

	store, err := storage.Open(scfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.Store.Dir, err)
	}

	registry := prometheus.NewRegistry()
	metrics := metric.NewTableMetrics(registry)
	registry.MustRegister(metric.NewStoreCollector(store.Size))

	return &env{store: store, cfg: cfg, logger: log, registry: registry, metrics: metrics}, nil
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Output string // table, json
	Wide   bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Output: c.String("output"),
		Wide:   c.Bool("wide"),
	}
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
