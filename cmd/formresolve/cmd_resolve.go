// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/formresolve/formresolve-mcp/internal/tool"
)

var (
	resolveCatalog string
	resolveFields  []string
	resolveFormat  string
	resolveOutput  string
	resolveDB      string
	resolveStrict  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <payload-file|->...",
	Short: "Resolve webhook payloads against the canonical field catalog",
	Long: `Resolve reads webhook payloads from files (or stdin with "-") and prints the
resolved value, match tier and matched ref for every canonical field, followed by the
resolution report. Several files are resolved concurrently and printed as a list in
argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveCatalog, "catalog", "", "canonical field catalog (overrides config)")
	resolveCmd.Flags().StringArrayVar(&resolveFields, "field", nil, "canonical field name, taken verbatim; repeatable, replaces the catalog")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "", "payload format hint (typeform, generic, yaml, json)")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "yaml", "output format (yaml, json)")
	resolveCmd.Flags().StringVar(&resolveDB, "db", "", "SQLite database recording resolution reports (overrides config)")
	resolveCmd.Flags().BoolVar(&resolveStrict, "strict", false, "fail when required catalog fields stay unresolved")
}

func runResolve(cmd *cobra.Command, args []string) error {
	payloads := make([][]byte, len(args))
	for i, path := range args {
		if path == "-" && slices.Index(args, "-") != i {
			return eris.New("stdin (-) can only be read once")
		}
		content, err := readPayload(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		payloads[i] = content
	}

	h, closeStore, err := resolveHandlers(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	outs := make([]tool.OutputResolveSubmission, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range args {
		g.Go(func() error {
			_, out, err := h.ResolveSubmission(ctx, nil, tool.InputResolveSubmission{
				Content:         string(payloads[i]),
				Format:          resolveFormat,
				SourceID:        args[i],
				CanonicalFields: resolveFields,
			})
			if err != nil {
				return eris.Wrapf(err, "%s", args[i])
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(outs) == 1 {
		err = writeOutput(cmd.OutOrStdout(), resolveOutput, outs[0])
	} else {
		err = writeOutput(cmd.OutOrStdout(), resolveOutput, outs)
	}
	if err != nil {
		return err
	}

	if !resolveStrict {
		return nil
	}
	var missing []string
	for i, out := range outs {
		for _, name := range out.MissingRequired {
			if len(outs) > 1 {
				name = args[i] + ":" + name
			}
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("%d required fields unresolved: %s", len(missing), strings.Join(missing, ", "))
	}
	return nil
}

func resolveHandlers(cmd *cobra.Command) (*tool.Handlers, func(), error) {
	var catalogPath string
	if len(resolveFields) == 0 {
		catalogPath = resolveCatalog
	}
	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return nil, nil, err
	}
	if cat == nil && len(resolveFields) == 0 {
		return nil, nil, eris.New("no canonical fields: pass --catalog, --field, or set catalog.path")
	}

	s, err := openStore(cmd.Context(), resolveDB)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {}
	if s != nil {
		closeStore = func() { _ = s.Close() }
	}
	return newHandlers(cat, s), closeStore, nil
}

func readPayload(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, eris.Wrap(err, "failed to read payload from stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read payload %s", path)
	}
	return data, nil
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "failed to encode output")
		}
		return nil
	case "yaml", "":
		data, err := yaml.Marshal(v)
		if err != nil {
			return eris.Wrap(err, "failed to encode output")
		}
		_, err = w.Write(data)
		return err
	default:
		return eris.Errorf("unknown output format %q (valid: yaml, json)", format)
	}
}
