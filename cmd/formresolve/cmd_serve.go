// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/formresolve/formresolve-mcp/internal/catalog"
)

var (
	serveCatalog string
	serveDB      string
	serveWatch   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "default canonical field catalog (overrides config)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite database recording resolution reports (overrides config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the catalog when its file changes")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cat, err := loadCatalog(serveCatalog)
	if err != nil {
		return err
	}
	s, err := openStore(ctx, serveDB)
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, nil)
	h := newHandlers(cat, s)
	h.Register(server)

	if serveWatch {
		path := serveCatalog
		if path == "" {
			path = cfg.Catalog.Path
		}
		if path == "" {
			return eris.New("--watch needs a catalog: pass --catalog or set catalog.path")
		}
		w := catalog.NewWatcher(path, h.SetCatalog, logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("catalog watcher stopped", zap.Error(err))
			}
		}()
	}

	fields := 0
	if cat != nil {
		fields = len(cat.Fields)
	}
	logger.Info("serving MCP on stdio",
		zap.String("name", cfg.Server.Name),
		zap.String("version", cfg.Server.Version),
		zap.Int("catalog_fields", fields),
		zap.Bool("store", s != nil))

	return server.Run(ctx, &mcp.StdioTransport{})
}
