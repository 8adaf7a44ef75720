// SPDX-License-Identifier: Apache-2.0

// Package payloads holds the provider webhook parsers used by the
// resolution pipeline.
package payloads

import "github.com/formresolve/formresolve-mcp/internal/resolve"

// Default returns all built-in parsers. Order matters: the provider-specific
// typeform parser is registered before the generic one, which would
// otherwise accept any JSON body carrying an "answers" key.
func Default() []resolve.PayloadParser {
	return []resolve.PayloadParser{
		NewTypeformParser(),
		NewGenericParser(),
	}
}
