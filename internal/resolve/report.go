// SPDX-License-Identifier: Apache-2.0

package resolve

import "fmt"

// MatchTier is the precedence level at which a canonical field was resolved.
type MatchTier string

const (
	TierDirect MatchTier = "DIRECT"
	TierTitle  MatchTier = "TITLE"
	TierFuzzy  MatchTier = "FUZZY"
	TierNone   MatchTier = "NONE"
)

// Diagnostic codes surfaced by Report.Diagnostics.
const (
	CodeUnresolvedField   = "unresolved_canonical_field"
	CodeUnsupportedType   = "unsupported_answer_type"
	CodeMalformedFieldDef = "malformed_field_definition"
	CodeDefaultedBoolean  = "defaulted_boolean"
)

const (
	reasonMissingRef   = "missing ref"
	reasonMissingTitle = "missing title"
	reasonMissingBoth  = "missing ref and title"
)

// UnsupportedAnswer records a canonical field whose matched answer had a
// type outside the closed set.
type UnsupportedAnswer struct {
	CanonicalName string     `json:"canonical_name" yaml:"canonical_name"`
	Ref           string     `json:"ref" yaml:"ref"`
	Type          AnswerType `json:"type" yaml:"type"`
}

// SkippedField records a definition entry left out of the title map.
type SkippedField struct {
	Index  int    `json:"index" yaml:"index"`
	Ref    string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report aggregates match outcomes for one submission. Name lists keep the
// order in which canonical fields were requested.
type Report struct {
	Total       int                 `json:"total" yaml:"total"`
	Direct      []string            `json:"direct" yaml:"direct"`
	Title       []string            `json:"title" yaml:"title"`
	Fuzzy       []string            `json:"fuzzy" yaml:"fuzzy"`
	Unresolved  []string            `json:"unresolved" yaml:"unresolved"`
	Unsupported []UnsupportedAnswer `json:"unsupported,omitempty" yaml:"unsupported,omitempty"`
	Defaulted   []string            `json:"defaulted,omitempty" yaml:"defaulted,omitempty"`
	Skipped     []SkippedField      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func newReport(total int) Report {
	return Report{
		Total:      total,
		Direct:     []string{},
		Title:      []string{},
		Fuzzy:      []string{},
		Unresolved: []string{},
	}
}

func (r *Report) record(name string, tier MatchTier) {
	switch tier {
	case TierDirect:
		r.Direct = append(r.Direct, name)
	case TierTitle:
		r.Title = append(r.Title, name)
	case TierFuzzy:
		r.Fuzzy = append(r.Fuzzy, name)
	default:
		r.Unresolved = append(r.Unresolved, name)
	}
}

// Names returns the canonical names resolved at tier.
func (r Report) Names(tier MatchTier) []string {
	switch tier {
	case TierDirect:
		return r.Direct
	case TierTitle:
		return r.Title
	case TierFuzzy:
		return r.Fuzzy
	case TierNone:
		return r.Unresolved
	}
	return nil
}

// Count returns how many canonical fields were resolved at tier.
func (r Report) Count(tier MatchTier) int {
	return len(r.Names(tier))
}

// Matched returns the number of canonical fields resolved by any tier.
func (r Report) Matched() int {
	return len(r.Direct) + len(r.Title) + len(r.Fuzzy)
}

// HasUnresolved reports whether any canonical field stayed at NONE.
func (r Report) HasUnresolved() bool {
	return len(r.Unresolved) > 0
}

// Summary is a one-line operator-facing description of the outcome.
func (r Report) Summary() string {
	return fmt.Sprintf("%d of %d expected fields failed to match this submission", len(r.Unresolved), r.Total)
}

// MissingRequired returns the members of required that stayed unresolved,
// in the order given. Whether that blocks anything is the caller's call.
func (r Report) MissingRequired(required []string) []string {
	unresolved := make(map[string]struct{}, len(r.Unresolved))
	for _, name := range r.Unresolved {
		unresolved[name] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := unresolved[name]; ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Diagnostic is a single coded finding derived from a Report.
type Diagnostic struct {
	Code    string `json:"code" yaml:"code"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.Field == "" {
		return fmt.Sprintf("[%s] %s", d.Code, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Field, d.Message)
}

// Diagnostics flattens the report into coded findings: skipped definition
// entries first, then unsupported types, defaulted booleans and unresolved
// fields.
func (r Report) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for _, s := range r.Skipped {
		out = append(out, Diagnostic{
			Code:    CodeMalformedFieldDef,
			Field:   s.Ref,
			Message: fmt.Sprintf("definition entry %d skipped: %s", s.Index, s.Reason),
		})
	}
	for _, u := range r.Unsupported {
		out = append(out, Diagnostic{
			Code:    CodeUnsupportedType,
			Field:   u.CanonicalName,
			Message: fmt.Sprintf("answer %q has unsupported type %q", u.Ref, u.Type),
		})
	}
	for _, name := range r.Defaulted {
		out = append(out, Diagnostic{
			Code:    CodeDefaultedBoolean,
			Field:   name,
			Message: "boolean answer carried no value, defaulted to false",
		})
	}
	for _, name := range r.Unresolved {
		out = append(out, Diagnostic{
			Code:    CodeUnresolvedField,
			Field:   name,
			Message: "no answer matched",
		})
	}
	return out
}
