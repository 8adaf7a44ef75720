// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/formresolve/formresolve-mcp/internal/catalog"
	"github.com/formresolve/formresolve-mcp/internal/config"
	"github.com/formresolve/formresolve-mcp/internal/logging"
	"github.com/formresolve/formresolve-mcp/internal/store"
	"github.com/formresolve/formresolve-mcp/internal/tool"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "formresolve",
	Short: "Resolve form webhook answers onto canonical field names",
	Long: `formresolve maps the answers of a form submission onto stable canonical
field names by exact field ref, normalized question title, or title containment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "formresolve.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, resolveCmd, normalizeCmd, reportsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadCatalog returns the catalog named by path, or by the config when path
// is empty. It returns nil when neither is set.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		path = cfg.Catalog.Path
	}
	if path == "" {
		return nil, nil
	}
	return catalog.Load(path)
}

// openStore opens the report store named by path or the config; nil when
// storage is disabled.
func openStore(ctx context.Context, path string) (*store.Store, error) {
	if path == "" {
		path = cfg.Store.Path
	}
	if path == "" {
		return nil, nil
	}
	return store.Open(ctx, path)
}

func newHandlers(cat *catalog.Catalog, s *store.Store) *tool.Handlers {
	opts := []tool.HandlerOption{
		tool.WithLogger(logger),
		tool.WithResolverOptions(cfg.ResolverOptions()...),
		tool.WithCatalog(cat),
		tool.WithNormalizer(cfg.Normalizer()),
	}
	if s != nil {
		opts = append(opts, tool.WithStore(s))
	}
	return tool.NewHandlers(opts...)
}
