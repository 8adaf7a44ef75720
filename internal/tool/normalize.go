// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rotisserie/eris"
)

// MetadataNormalizeTitle describes the normalize_title tool.
var MetadataNormalizeTitle = &mcp.Tool{
	Name: "normalize_title",
	Description: "Normalize form question labels into the slug form used for canonical field matching. " +
		"Emoji, punctuation and boilerplate prefixes (title_, question_, field_) are removed, " +
		"whitespace becomes underscores, and '(optional)' becomes '_optional'.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"titles"},
		"properties": map[string]interface{}{
			"titles": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Raw question labels to normalize",
			},
		},
	},
}

// InputNormalizeTitle is the input for the NormalizeTitle tool.
type InputNormalizeTitle struct {
	Titles []string `json:"titles"`
}

// OutputNormalizeTitle is the output for the NormalizeTitle tool.
type OutputNormalizeTitle struct {
	// Normalized holds one slug per input title, in input order.
	Normalized []string `json:"normalized"`
}

// NormalizeTitle normalizes every input title.
func (h *Handlers) NormalizeTitle(_ context.Context, _ *mcp.CallToolRequest, input InputNormalizeTitle) (*mcp.CallToolResult, OutputNormalizeTitle, error) {
	if len(input.Titles) == 0 {
		return nil, OutputNormalizeTitle{}, eris.New("titles is required")
	}
	out := make([]string, len(input.Titles))
	for i, t := range input.Titles {
		out[i] = h.normalizer.Normalize(t)
	}
	return nil, OutputNormalizeTitle{Normalized: out}, nil
}
