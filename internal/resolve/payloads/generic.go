// SPDX-License-Identifier: Apache-2.0

package payloads

import (
	"context"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rotisserie/eris"

	"github.com/formresolve/formresolve-mcp/internal/resolve"
)

type genericDocument struct {
	ID         string                  `yaml:"id"`
	FormID     string                  `yaml:"form_id"`
	Definition []resolve.ExternalField `yaml:"definition"`
	Answers    []genericAnswer         `yaml:"answers"`
}

type genericAnswer struct {
	FieldRef        string `yaml:"field_ref"`
	Type            string `yaml:"type"`
	resolve.Payload `yaml:",inline"`
}

var genericTopLevelKeys = []string{"id:", "form_id:", "definition:", "answers:"}

// GenericParser reads the provider-neutral submission document used by
// fixtures and by integrations that pre-flatten their payloads:
//
//	id: sub-1
//	definition:
//	  - {ref: f1, title: "Are you safe?"}
//	answers:
//	  - {field_ref: f1, type: boolean, boolean: true}
//
// The same shape is accepted as JSON.
type GenericParser struct{}

func NewGenericParser() *GenericParser {
	return &GenericParser{}
}

func (p *GenericParser) Name() string {
	return "generic"
}

func (p *GenericParser) CanHandle(source resolve.Source) bool {
	switch strings.ToLower(source.Format) {
	case "generic", "yaml", "yml", "json":
		return true
	}
	content := strings.TrimSpace(string(source.Content))
	if strings.HasPrefix(content, "{") {
		return strings.Contains(content, `"answers"`)
	}
	first := strings.TrimSpace(strings.SplitN(content, "\n", 2)[0])
	for _, key := range genericTopLevelKeys {
		if strings.HasPrefix(first, key) {
			return true
		}
	}
	return false
}

func (p *GenericParser) Parse(_ context.Context, source resolve.Source) (resolve.Submission, error) {
	var doc genericDocument
	if err := yaml.Unmarshal(source.Content, &doc); err != nil {
		return resolve.Submission{}, eris.Wrap(err, "failed to unmarshal submission document")
	}

	answers := make([]resolve.Answer, 0, len(doc.Answers))
	for _, a := range doc.Answers {
		answers = append(answers, resolve.Answer{
			FieldRef: a.FieldRef,
			Type:     resolve.AnswerType(a.Type),
			Payload:  a.Payload,
		})
	}

	return resolve.Submission{
		ID:         doc.ID,
		FormID:     doc.FormID,
		Definition: doc.Definition,
		Answers:    answers,
	}, nil
}
