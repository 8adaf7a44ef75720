// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"strings"
	"unicode/utf8"
)

// DefaultFuzzyMinLength is the shortest canonical name, in runes, for which
// substring matching is attempted.
const DefaultFuzzyMinLength = 4

// Result is the outcome for one requested canonical field. MatchedRef is
// empty when MatchTier is TierNone.
type Result struct {
	CanonicalName string    `json:"canonical_name" yaml:"canonical_name"`
	Value         any       `json:"value" yaml:"value"`
	MatchTier     MatchTier `json:"match_tier" yaml:"match_tier"`
	MatchedRef    string    `json:"matched_ref,omitempty" yaml:"matched_ref,omitempty"`
}

// Matched reports whether any tier produced an answer.
func (r Result) Matched() bool {
	return r.MatchTier != TierNone
}

// Resolution holds one Result per requested canonical field, in request
// order, plus the aggregated report.
type Resolution struct {
	Results []Result `json:"results" yaml:"results"`
	Report  Report   `json:"report" yaml:"report"`
}

// Values maps every requested canonical name to its value; unmatched names
// map to nil. When a name was requested twice the first result wins.
func (r Resolution) Values() map[string]any {
	out := make(map[string]any, len(r.Results))
	for _, res := range r.Results {
		if _, ok := out[res.CanonicalName]; !ok {
			out[res.CanonicalName] = res.Value
		}
	}
	return out
}

// Lookup returns the first result for name.
func (r Resolution) Lookup(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.CanonicalName == name {
			return res, true
		}
	}
	return Result{}, false
}

// TitleMap maps provider field refs to normalized titles for one submission.
type TitleMap map[string]string

// Option configures a Resolver.
type Option func(*Resolver)

// WithNormalizer replaces the title normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(r *Resolver) {
		if n != nil {
			r.normalizer = n
		}
	}
}

// WithFuzzyMinLength sets the fuzzy-tier floor. Values below 1 are ignored.
func WithFuzzyMinLength(n int) Option {
	return func(r *Resolver) {
		if n >= 1 {
			r.fuzzyMinLength = n
		}
	}
}

// Resolver maps canonical field names onto submitted answers. It holds only
// options, so one Resolver may serve any number of goroutines.
type Resolver struct {
	normalizer     *Normalizer
	fuzzyMinLength int
}

// NewResolver creates a Resolver with the default normalizer and fuzzy floor.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		normalizer:     defaultNormalizer,
		fuzzyMinLength: DefaultFuzzyMinLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve resolves canonicalFields with the default Resolver.
func Resolve(canonicalFields []string, answers []Answer, definition []ExternalField) Resolution {
	return defaultResolver.Resolve(canonicalFields, answers, definition)
}

// TitleMap builds the ref to normalized title map for definition. The first
// entry for a ref wins; entries missing a ref or a title are skipped.
func (r *Resolver) TitleMap(definition []ExternalField) TitleMap {
	titles, _ := r.buildTitleMap(definition)
	return titles
}

func (r *Resolver) buildTitleMap(definition []ExternalField) (TitleMap, []SkippedField) {
	titles := make(TitleMap, len(definition))
	var skipped []SkippedField
	for i, f := range definition {
		if f.Ref == "" || f.Title == "" {
			skipped = append(skipped, SkippedField{
				Index:  i,
				Ref:    f.Ref,
				Title:  f.Title,
				Reason: skipReason(f),
			})
			continue
		}
		if _, seen := titles[f.Ref]; seen {
			continue
		}
		titles[f.Ref] = r.normalizer.Normalize(f.Title)
	}
	return titles, skipped
}

func skipReason(f ExternalField) string {
	switch {
	case f.Ref == "" && f.Title == "":
		return reasonMissingBoth
	case f.Ref == "":
		return reasonMissingRef
	default:
		return reasonMissingTitle
	}
}

// Resolve returns exactly one Result per entry of canonicalFields. The title
// map is built once and shared by every lookup. Tiers are tried in order
// DIRECT, TITLE, FUZZY; the first tier with a candidate wins even when the
// extracted value is nil, and within a tier the earliest answer wins.
func (r *Resolver) Resolve(canonicalFields []string, answers []Answer, definition []ExternalField) Resolution {
	titles, skipped := r.buildTitleMap(definition)

	report := newReport(len(canonicalFields))
	report.Skipped = skipped

	results := make([]Result, 0, len(canonicalFields))
	for _, name := range canonicalFields {
		idx, tier := r.lookup(name, answers, titles)
		report.record(name, tier)
		if tier == TierNone {
			results = append(results, Result{CanonicalName: name, MatchTier: TierNone})
			continue
		}

		a := answers[idx]
		if !a.Type.Supported() {
			report.Unsupported = append(report.Unsupported, UnsupportedAnswer{
				CanonicalName: name,
				Ref:           a.FieldRef,
				Type:          a.Type,
			})
		}
		if a.Type == AnswerBoolean && a.Payload.Boolean == nil {
			report.Defaulted = append(report.Defaulted, name)
		}
		results = append(results, Result{
			CanonicalName: name,
			Value:         ExtractValue(a),
			MatchTier:     tier,
			MatchedRef:    a.FieldRef,
		})
	}

	return Resolution{Results: results, Report: report}
}

// lookup returns the index of the winning answer and its tier, or -1 and
// TierNone.
func (r *Resolver) lookup(name string, answers []Answer, titles TitleMap) (int, MatchTier) {
	if name == "" {
		return -1, TierNone
	}

	for i, a := range answers {
		if a.FieldRef != "" && a.FieldRef == name {
			return i, TierDirect
		}
	}

	for i, a := range answers {
		if t, ok := titles[a.FieldRef]; ok && t == name {
			return i, TierTitle
		}
	}

	if utf8.RuneCountInString(name) < r.fuzzyMinLength {
		return -1, TierNone
	}
	for i, a := range answers {
		if t, ok := titles[a.FieldRef]; ok && strings.Contains(t, name) {
			return i, TierFuzzy
		}
	}

	return -1, TierNone
}
