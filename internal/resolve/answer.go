// SPDX-License-Identifier: Apache-2.0

package resolve

import "strings"

// ExternalField associates a provider field reference with its current
// human-authored label.
type ExternalField struct {
	Ref   string `json:"ref" yaml:"ref"`
	Title string `json:"title" yaml:"title"`
}

// AnswerType is the provider-declared shape of an answer payload.
type AnswerType string

const (
	AnswerText        AnswerType = "text"
	AnswerEmail       AnswerType = "email"
	AnswerURL         AnswerType = "url"
	AnswerPhoneNumber AnswerType = "phone_number"
	AnswerChoice      AnswerType = "choice"
	AnswerChoices     AnswerType = "choices"
	AnswerBoolean     AnswerType = "boolean"
	AnswerNumber      AnswerType = "number"
	AnswerDate        AnswerType = "date"
	AnswerFileURL     AnswerType = "file_url"
)

// Supported reports whether t belongs to the closed set of answer types.
func (t AnswerType) Supported() bool {
	switch t {
	case AnswerText, AnswerEmail, AnswerURL, AnswerPhoneNumber,
		AnswerChoice, AnswerChoices, AnswerBoolean, AnswerNumber,
		AnswerDate, AnswerFileURL:
		return true
	}
	return false
}

// Choice is a single-select payload.
type Choice struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Other string `json:"other,omitempty" yaml:"other,omitempty"`
}

// Choices is a multi-select payload.
type Choices struct {
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Other  string   `json:"other,omitempty" yaml:"other,omitempty"`
}

// Payload carries the type-specific members of an answer, keyed the way
// providers key them. Only the member matching the answer type is read.
type Payload struct {
	Text        *string  `json:"text,omitempty" yaml:"text,omitempty"`
	Email       *string  `json:"email,omitempty" yaml:"email,omitempty"`
	URL         *string  `json:"url,omitempty" yaml:"url,omitempty"`
	PhoneNumber *string  `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
	Choice      *Choice  `json:"choice,omitempty" yaml:"choice,omitempty"`
	Choices     *Choices `json:"choices,omitempty" yaml:"choices,omitempty"`
	Boolean     *bool    `json:"boolean,omitempty" yaml:"boolean,omitempty"`
	Number      *float64 `json:"number,omitempty" yaml:"number,omitempty"`
	Date        *string  `json:"date,omitempty" yaml:"date,omitempty"`
	FileURL     *string  `json:"file_url,omitempty" yaml:"file_url,omitempty"`
}

// Answer is one submitted answer. Answers are never mutated.
type Answer struct {
	FieldRef string     `json:"field_ref" yaml:"field_ref"`
	Type     AnswerType `json:"type" yaml:"type"`
	Payload  Payload    `json:"payload" yaml:"payload"`
}

// ExtractValue returns the typed value carried by a: a string, float64,
// bool, or nil. Unknown answer types yield nil. A missing boolean yields
// false, which makes "answered no" and "not answered" indistinguishable;
// the resolver reports such fields as defaulted.
func ExtractValue(a Answer) any {
	p := a.Payload
	switch a.Type {
	case AnswerText:
		return textValue(p.Text)
	case AnswerEmail:
		return textValue(firstString(p.Email, p.Text))
	case AnswerURL:
		return textValue(firstString(p.URL, p.Text))
	case AnswerPhoneNumber:
		return textValue(firstString(p.PhoneNumber, p.Text))
	case AnswerChoice:
		if p.Choice == nil {
			return nil
		}
		if p.Choice.Label != "" {
			return p.Choice.Label
		}
		if p.Choice.Other != "" {
			return p.Choice.Other
		}
		return nil
	case AnswerChoices:
		if p.Choices == nil {
			return nil
		}
		labels := make([]string, 0, len(p.Choices.Labels))
		for _, l := range p.Choices.Labels {
			if l != "" {
				labels = append(labels, l)
			}
		}
		if len(labels) > 0 {
			return strings.Join(labels, ", ")
		}
		if p.Choices.Other != "" {
			return p.Choices.Other
		}
		return nil
	case AnswerBoolean:
		if p.Boolean == nil {
			return false
		}
		return *p.Boolean
	case AnswerNumber:
		if p.Number == nil {
			return nil
		}
		return *p.Number
	case AnswerDate:
		return textValue(p.Date)
	case AnswerFileURL:
		return textValue(p.FileURL)
	}
	return nil
}

func firstString(ss ...*string) *string {
	for _, s := range ss {
		if s != nil {
			return s
		}
	}
	return nil
}

func textValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
