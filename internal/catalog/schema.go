// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/rotisserie/eris"
)

const schemaSource = `
#Field: {
	name:         string & !=""
	required?:    bool
	description?: string
}

#Catalog: {
	name?:  string
	fields: [#Field, ...#Field]
}
`

// Validate checks the catalog against its CUE schema and rejects duplicate
// names.
func (c *Catalog) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return eris.Wrap(err, "failed to compile catalog schema")
	}

	def := schema.LookupPath(cue.ParsePath("#Catalog"))
	value := def.Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return eris.Errorf("invalid catalog: %s", cueerrors.Details(err, nil))
	}

	seen := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		if _, dup := seen[f.Name]; dup {
			return eris.Errorf("invalid catalog: duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}
