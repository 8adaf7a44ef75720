// SPDX-License-Identifier: Apache-2.0

package payloads

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rotisserie/eris"

	"github.com/formresolve/formresolve-mcp/internal/resolve"
)

// typeformEnvelope is the subset of a Typeform webhook body the resolver
// needs. JSON is valid YAML, so the YAML decoder reads it directly.
type typeformEnvelope struct {
	EventID      string            `yaml:"event_id"`
	EventType    string            `yaml:"event_type"`
	FormResponse *typeformResponse `yaml:"form_response"`
}

type typeformResponse struct {
	FormID      string             `yaml:"form_id"`
	Token       string             `yaml:"token"`
	SubmittedAt string             `yaml:"submitted_at"`
	Definition  typeformDefinition `yaml:"definition"`
	Answers     []typeformAnswer   `yaml:"answers"`
	Hidden      yaml.MapSlice      `yaml:"hidden"`
}

type typeformDefinition struct {
	ID     string          `yaml:"id"`
	Title  string          `yaml:"title"`
	Fields []typeformField `yaml:"fields"`
}

type typeformField struct {
	ID    string `yaml:"id"`
	Ref   string `yaml:"ref"`
	Title string `yaml:"title"`
	Type  string `yaml:"type"`
}

// key prefers the integrator-assigned ref over the opaque id.
func (f typeformField) key() string {
	if f.Ref != "" {
		return f.Ref
	}
	return f.ID
}

type typeformAnswer struct {
	Type            string        `yaml:"type"`
	Field           typeformField `yaml:"field"`
	resolve.Payload `yaml:",inline"`
}

// TypeformParser reads Typeform "form_response" webhook bodies. Hidden
// fields are appended as text answers keyed by their name, so they resolve
// through the DIRECT tier.
type TypeformParser struct{}

// NewTypeformParser creates a new TypeformParser.
func NewTypeformParser() *TypeformParser {
	return &TypeformParser{}
}

func (p *TypeformParser) Name() string {
	return "typeform"
}

// CanHandle returns true for sources with a "typeform" format hint. Without
// a hint, or with a "json" hint, the content must decode to a document whose
// top-level form_response key holds an object. Any other hint is declined.
func (p *TypeformParser) CanHandle(source resolve.Source) bool {
	switch strings.ToLower(source.Format) {
	case "typeform":
		return true
	case "", "json":
	default:
		return false
	}
	if !strings.Contains(string(source.Content), "form_response") {
		return false
	}
	var top map[string]any
	if err := yaml.Unmarshal(source.Content, &top); err != nil {
		return false
	}
	_, ok := top["form_response"].(map[string]any)
	return ok
}

func (p *TypeformParser) Parse(_ context.Context, source resolve.Source) (resolve.Submission, error) {
	var env typeformEnvelope
	if err := yaml.Unmarshal(source.Content, &env); err != nil {
		return resolve.Submission{}, eris.Wrap(err, "failed to unmarshal typeform payload")
	}
	if env.FormResponse == nil {
		return resolve.Submission{}, eris.New("typeform payload has no form_response")
	}
	fr := env.FormResponse

	sub := resolve.Submission{
		ID:         fr.Token,
		FormID:     fr.FormID,
		Definition: make([]resolve.ExternalField, 0, len(fr.Definition.Fields)),
		Answers:    make([]resolve.Answer, 0, len(fr.Answers)+len(fr.Hidden)),
	}
	if sub.ID == "" {
		sub.ID = env.EventID
	}

	for _, f := range fr.Definition.Fields {
		sub.Definition = append(sub.Definition, resolve.ExternalField{
			Ref:   f.key(),
			Title: f.Title,
		})
	}
	for _, a := range fr.Answers {
		sub.Answers = append(sub.Answers, resolve.Answer{
			FieldRef: a.Field.key(),
			Type:     resolve.AnswerType(a.Type),
			Payload:  a.Payload,
		})
	}
	for _, item := range fr.Hidden {
		name := fmt.Sprint(item.Key)
		if name == "" || item.Value == nil {
			continue
		}
		value := fmt.Sprint(item.Value)
		sub.Answers = append(sub.Answers, resolve.Answer{
			FieldRef: name,
			Type:     resolve.AnswerText,
			Payload:  resolve.Payload{Text: &value},
		})
	}

	return sub, nil
}
