// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/formresolve/formresolve-mcp/internal/resolve"
	"github.com/formresolve/formresolve-mcp/internal/store"
)

// MetadataResolveSubmission describes the resolve_submission tool.
var MetadataResolveSubmission = &mcp.Tool{
	Name: "resolve_submission",
	Description: "Resolve a form webhook payload against a list of canonical field names. " +
		"Each canonical field is matched by exact field ref (DIRECT), by exact normalized question " +
		"title (TITLE), or by the canonical name appearing inside a normalized title (FUZZY, names of " +
		"4+ characters only). Every requested field gets a result; unmatched fields have match_tier NONE. " +
		"Supported payload formats: typeform, generic (yaml/json).",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw webhook body",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format hint for the payload. One of: typeform, generic, yaml, json. If omitted, auto-detection is used.",
				"enum":        []string{"typeform", "generic", "yaml", "json"},
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier used when the payload carries no submission id.",
			},
			"canonical_fields": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Ordered canonical field names to resolve. Defaults to the server's configured catalog.",
			},
		},
	},
}

// InputResolveSubmission is the input for the ResolveSubmission tool.
type InputResolveSubmission struct {
	Content         string   `json:"content"`
	Format          string   `json:"format"`
	SourceID        string   `json:"source_id"`
	CanonicalFields []string `json:"canonical_fields"`
}

// OutputResolveSubmission is the output for the ResolveSubmission tool.
type OutputResolveSubmission struct {
	SubmissionID string           `json:"submission_id" yaml:"submission_id"`
	ParserUsed   string           `json:"parser_used" yaml:"parser_used"`
	Results      []resolve.Result `json:"results" yaml:"results"`
	Report       resolve.Report   `json:"report" yaml:"report"`
	Summary      string           `json:"summary" yaml:"summary"`
	// Diagnostics lists coded findings such as unresolved fields.
	Diagnostics []resolve.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	// MissingRequired lists required catalog fields left unresolved.
	MissingRequired []string `json:"missing_required,omitempty" yaml:"missing_required,omitempty"`
	// RunID is set when the report was recorded in the store.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// ResolveSubmission parses the payload and resolves the requested canonical
// fields against it.
func (h *Handlers) ResolveSubmission(ctx context.Context, _ *mcp.CallToolRequest, input InputResolveSubmission) (*mcp.CallToolResult, OutputResolveSubmission, error) {
	if input.Content == "" {
		return nil, OutputResolveSubmission{}, eris.New("content is required")
	}

	fields := input.CanonicalFields
	var required []string
	if len(fields) == 0 {
		fields, required = h.catalogFields()
	}
	if len(fields) == 0 {
		return nil, OutputResolveSubmission{}, eris.New("canonical_fields is required")
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	src := resolve.Source{
		Content: []byte(input.Content),
		Format:  input.Format,
		ID:      sourceID,
	}

	result, err := h.pipeline.RunWithMeta(ctx, src, fields)
	if err != nil {
		return nil, OutputResolveSubmission{}, err
	}

	report := result.Resolution.Report
	out := OutputResolveSubmission{
		SubmissionID:    result.SubmissionID,
		ParserUsed:      result.ParserUsed,
		Results:         result.Resolution.Results,
		Report:          report,
		Summary:         report.Summary(),
		Diagnostics:     report.Diagnostics(),
		MissingRequired: report.MissingRequired(required),
	}

	if h.store != nil {
		runID, err := h.store.SaveReport(ctx, store.Meta{
			SubmissionID: result.SubmissionID,
			FormID:       result.FormID,
			Parser:       result.ParserUsed,
		}, result.Resolution)
		if err != nil {
			// A failed save does not fail the call.
			h.logger.Error("failed to record resolution report", zap.String("submission", result.SubmissionID), zap.Error(err))
		} else {
			out.RunID = runID
		}
	}

	return nil, out, nil
}
