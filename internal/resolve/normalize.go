// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// pictographs covers the emoji, pictograph, symbol and flag blocks that
// providers use to decorate question labels, plus the joiners and selectors
// that glue multi-code-point emoji together.
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1}, // zero width joiner
		{Lo: 0x20e3, Hi: 0x20e3, Stride: 1}, // combining keycap
		{Lo: 0x2600, Hi: 0x26ff, Stride: 1}, // miscellaneous symbols
		{Lo: 0x2700, Hi: 0x27bf, Stride: 1}, // dingbats (check mark, cross mark)
		{Lo: 0xfe00, Hi: 0xfe0f, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1f1e6, Hi: 0x1f1ff, Stride: 1}, // regional indicators
		{Lo: 0x1f300, Hi: 0x1f5ff, Stride: 1}, // misc symbols and pictographs
		{Lo: 0x1f600, Hi: 0x1f64f, Stride: 1}, // emoticons
		{Lo: 0x1f680, Hi: 0x1f6ff, Stride: 1}, // transport and map (shield)
		{Lo: 0x1f900, Hi: 0x1faff, Stride: 1}, // supplemental symbols and pictographs
	},
}

// DefaultTitlePrefixes are the boilerplate prefixes removed from normalized titles.
var DefaultTitlePrefixes = []string{"title_", "question_", "field_"}

var punctuationRemover = strings.NewReplacer(
	":", "", ".", "", ";", "", "?", "", "!", "",
	"'", "", `"`, "", "(", "", ")", "", ",", "",
)

var separatorReplacer = strings.NewReplacer("-", "_", "/", "_")

// Normalizer turns free-text question labels into slugs comparable with
// canonical field names. The zero value is not usable; use NewNormalizer.
type Normalizer struct {
	prefixes []string
}

// NewNormalizer returns a Normalizer stripping the given boilerplate
// prefixes. With no prefixes, DefaultTitlePrefixes is used.
func NewNormalizer(prefixes ...string) *Normalizer {
	if len(prefixes) == 0 {
		prefixes = DefaultTitlePrefixes
	}
	p := make([]string, len(prefixes))
	copy(p, prefixes)
	return &Normalizer{prefixes: p}
}

var defaultNormalizer = NewNormalizer()

// NormalizeTitle normalizes a raw label with the default prefixes.
func NormalizeTitle(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Normalize maps raw onto ^[a-z0-9_]*$ with no leading, trailing or repeated
// underscores. It is total and idempotent. The step order matters: the
// optional marker must be rewritten before parentheses disappear, and glyphs
// must be gone before whitespace is collapsed.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(raw)
	s = strings.ReplaceAll(s, "(optional)", "_optional")
	s = stripGlyphs(s)
	s = punctuationRemover.Replace(s)
	s = separatorReplacer.Replace(s)
	s = strings.ReplaceAll(s, "@", "")
	s = keepSlugRunes(s)
	s = collapseUnderscores(s)
	s = strings.Trim(s, "_")
	return n.stripPrefixes(s)
}

// glyphFolder is rebuilt per call: transform.Transformer values carry state.
func glyphFolder() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.In(pictographs)),
		runes.Map(unicode.ToLower),
		norm.NFC,
	)
}

func stripGlyphs(s string) string {
	out, _, err := transform.String(glyphFolder(), s)
	if err != nil {
		// Only invalid transformer state can fail here; fall back to a
		// plain rune filter so the normalizer stays total.
		return strings.Map(func(r rune) rune {
			if unicode.Is(pictographs, r) {
				return -1
			}
			return r
		}, s)
	}
	return out
}

// keepSlugRunes turns whitespace and dash punctuation into underscores and
// drops anything else that cannot appear in a slug.
func keepSlugRunes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r), unicode.Is(unicode.Pd, r):
			b.WriteByte('_')
		}
	}
	return b.String()
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// stripPrefixes removes boilerplate prefixes until none applies; stopping
// after one would leave "question_x" from "title_question_x" and break
// idempotence.
func (n *Normalizer) stripPrefixes(s string) string {
	for {
		stripped := false
		for _, p := range n.prefixes {
			if p != "" && strings.HasPrefix(s, p) && len(s) > len(p) {
				s = strings.Trim(s[len(p):], "_")
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}
