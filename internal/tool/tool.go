// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the resolver as MCP tools.
package tool

import (
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/formresolve/formresolve-mcp/internal/catalog"
	"github.com/formresolve/formresolve-mcp/internal/resolve"
	"github.com/formresolve/formresolve-mcp/internal/resolve/payloads"
	"github.com/formresolve/formresolve-mcp/internal/store"
)

// Handlers carries the dependencies shared by the tool handlers.
type Handlers struct {
	pipeline   *resolve.Pipeline
	normalizer *resolve.Normalizer
	store      *store.Store
	logger     *zap.Logger

	mu            sync.RWMutex
	defaultFields []string
	required      []string
}

// HandlerOption configures Handlers.
type HandlerOption func(*Handlers)

// WithCatalog sets the canonical fields used when a request names none.
func WithCatalog(cat *catalog.Catalog) HandlerOption {
	return func(h *Handlers) { h.SetCatalog(cat) }
}

// WithStore records every resolution in s.
func WithStore(s *store.Store) HandlerOption {
	return func(h *Handlers) { h.store = s }
}

// WithLogger sets the logger for handlers and the pipeline.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithResolverOptions configures the resolver behind the pipeline.
func WithResolverOptions(opts ...resolve.Option) HandlerOption {
	return func(h *Handlers) {
		h.pipeline = resolve.NewPipeline(resolve.NewResolver(opts...), payloads.Default()...)
	}
}

// WithNormalizer sets the normalizer used by normalize_title.
func WithNormalizer(n *resolve.Normalizer) HandlerOption {
	return func(h *Handlers) {
		if n != nil {
			h.normalizer = n
		}
	}
}

// NewHandlers builds Handlers with all default payload parsers registered.
func NewHandlers(opts ...HandlerOption) *Handlers {
	h := &Handlers{
		pipeline:   resolve.NewPipeline(nil, payloads.Default()...),
		normalizer: resolve.NewNormalizer(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.pipeline.WithLogger(h.logger)
	return h
}

// SetCatalog swaps the default catalog. It is safe to call while requests
// are being served; a nil catalog is ignored.
func (h *Handlers) SetCatalog(cat *catalog.Catalog) {
	if cat == nil {
		return
	}
	names, required := cat.Names(), cat.Required()
	h.mu.Lock()
	h.defaultFields, h.required = names, required
	h.mu.Unlock()
}

func (h *Handlers) catalogFields() (fields, required []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaultFields, h.required
}

// Register adds every tool to server.
func (h *Handlers) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataNormalizeTitle, h.NormalizeTitle)
	mcp.AddTool(server, MetadataResolveSubmission, h.ResolveSubmission)
}
