// SPDX-License-Identifier: Apache-2.0

package payloads_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formresolve/formresolve-mcp/internal/resolve"
	"github.com/formresolve/formresolve-mcp/internal/resolve/payloads"
)

const mentionsFormResponse = `id: sub-77
definition:
  - {ref: f1, title: "Notes for dispatch"}
answers:
  - field_ref: f1
    type: text
    text: "resent the form_response webhook"
`

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// ---------------------------------------------------------------------------
// Typeform
// ---------------------------------------------------------------------------

func TestTypeformParser_CanHandle(t *testing.T) {
	p := payloads.NewTypeformParser()
	assert.Equal(t, "typeform", p.Name())

	tests := []struct {
		name   string
		source resolve.Source
		want   bool
	}{
		{"format hint", resolve.Source{Format: "Typeform"}, true},
		{"content sniff", resolve.Source{Content: readFixture(t, "typeform_safety_check.json")}, true},
		{"generic document", resolve.Source{Content: readFixture(t, "generic_submission.yaml")}, false},
		{"json hint with envelope", resolve.Source{Format: "json", Content: readFixture(t, "typeform_safety_check.json")}, true},
		{"generic hint declines envelope", resolve.Source{Format: "generic", Content: readFixture(t, "typeform_safety_check.json")}, false},
		{"yaml hint declines envelope", resolve.Source{Format: "yml", Content: readFixture(t, "typeform_safety_check.json")}, false},
		{"key name inside answer text", resolve.Source{Content: []byte(mentionsFormResponse)}, false},
		{"key name inside json answer text", resolve.Source{Content: []byte(`{"answers": [{"field_ref": "f1", "type": "text", "text": "form_response"}]}`)}, false},
		{"form_response not an object", resolve.Source{Content: []byte(`{"form_response": "pending"}`)}, false},
		{"empty", resolve.Source{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanHandle(tt.source))
		})
	}
}

func TestTypeformParser_Parse(t *testing.T) {
	p := payloads.NewTypeformParser()
	sub, err := p.Parse(context.Background(), resolve.Source{Content: readFixture(t, "typeform_safety_check.json")})
	require.NoError(t, err)

	assert.Equal(t, "a3a12ec67a1365927098a606107fac15", sub.ID)
	assert.Equal(t, "lT4Z3j", sub.FormID)

	require.Len(t, sub.Definition, 8)
	assert.Equal(t, resolve.ExternalField{Ref: "DlXFaesGBpoF", Title: "🛡️ Quick safety check: Are you safe?"}, sub.Definition[0])
	assert.Equal(t, "license_plate_number", sub.Definition[1].Ref, "ref preferred over id")

	// Eight answers plus two hidden fields.
	require.Len(t, sub.Answers, 10)
	assert.Equal(t, "DlXFaesGBpoF", sub.Answers[0].FieldRef)
	assert.Equal(t, resolve.AnswerBoolean, sub.Answers[0].Type)
	require.NotNil(t, sub.Answers[0].Payload.Boolean)
	assert.True(t, *sub.Answers[0].Payload.Boolean)

	assert.Equal(t, "license_plate_number", sub.Answers[1].FieldRef)
	require.NotNil(t, sub.Answers[3].Payload.Choices)
	assert.Equal(t, []string{"Debris", "Oil spill"}, sub.Answers[3].Payload.Choices.Labels)
	require.NotNil(t, sub.Answers[4].Payload.Number)
	assert.Equal(t, 128450.0, *sub.Answers[4].Payload.Number)
	assert.Equal(t, resolve.AnswerType("payment"), sub.Answers[7].Type)

	hidden := sub.Answers[8:]
	assert.Equal(t, "depot_code", hidden[0].FieldRef)
	assert.Equal(t, resolve.AnswerText, hidden[0].Type)
	assert.Equal(t, "MAN-04", resolve.ExtractValue(hidden[0]))
	assert.Equal(t, "shift", hidden[1].FieldRef)
	assert.Equal(t, "2", resolve.ExtractValue(hidden[1]))
}

func TestTypeformParser_Parse_EventIDFallback(t *testing.T) {
	content := []byte(`{"event_id": "evt-9", "form_response": {"form_id": "f", "answers": []}}`)
	sub, err := payloads.NewTypeformParser().Parse(context.Background(), resolve.Source{Content: content})
	require.NoError(t, err)
	assert.Equal(t, "evt-9", sub.ID)
	assert.Empty(t, sub.Answers)
}

func TestTypeformParser_Parse_Errors(t *testing.T) {
	p := payloads.NewTypeformParser()

	_, err := p.Parse(context.Background(), resolve.Source{Content: []byte(`{"form_response": [`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal typeform payload")

	_, err = p.Parse(context.Background(), resolve.Source{Content: []byte(`{"event_id": "x"}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no form_response")
}

// ---------------------------------------------------------------------------
// Generic
// ---------------------------------------------------------------------------

func TestGenericParser_CanHandle(t *testing.T) {
	p := payloads.NewGenericParser()
	assert.Equal(t, "generic", p.Name())

	tests := []struct {
		name   string
		source resolve.Source
		want   bool
	}{
		{"yaml hint", resolve.Source{Format: "YAML"}, true},
		{"json hint", resolve.Source{Format: "json"}, true},
		{"yaml document", resolve.Source{Content: readFixture(t, "generic_submission.yaml")}, true},
		{"json document", resolve.Source{Content: []byte(`  {"id": "x", "answers": []}`)}, true},
		{"json without answers", resolve.Source{Content: []byte(`{"hello": "world"}`)}, false},
		{"markdown", resolve.Source{Content: []byte("# Incident\n\nanswers: none")}, false},
		{"empty", resolve.Source{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanHandle(tt.source))
		})
	}
}

func TestGenericParser_Parse(t *testing.T) {
	sub, err := payloads.NewGenericParser().Parse(context.Background(), resolve.Source{Content: readFixture(t, "generic_submission.yaml")})
	require.NoError(t, err)

	assert.Equal(t, "sub-0042", sub.ID)
	assert.Equal(t, "incident-v3", sub.FormID)
	require.Len(t, sub.Definition, 3)
	assert.Equal(t, "", sub.Definition[2].Ref)

	require.Len(t, sub.Answers, 3)
	assert.Equal(t, false, resolve.ExtractValue(sub.Answers[0]))
	assert.Equal(t, "Minor cuts", resolve.ExtractValue(sub.Answers[1]))
	assert.Equal(t, "Sam Okafor", resolve.ExtractValue(sub.Answers[2]))
}

func TestGenericParser_ParseJSON(t *testing.T) {
	content := []byte(`{
  "id": "sub-7",
  "definition": [{"ref": "f1", "title": "Phone number (optional)"}],
  "answers": [{"field_ref": "f1", "type": "phone_number", "phone_number": "+15550100"}]
}`)
	sub, err := payloads.NewGenericParser().Parse(context.Background(), resolve.Source{Content: content, Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, "sub-7", sub.ID)
	require.Len(t, sub.Answers, 1)
	assert.Equal(t, "+15550100", resolve.ExtractValue(sub.Answers[0]))
}

// ---------------------------------------------------------------------------
// End to end
// ---------------------------------------------------------------------------

func TestDefault_Order(t *testing.T) {
	parsers := payloads.Default()
	require.Len(t, parsers, 2)
	assert.Equal(t, "typeform", parsers[0].Name())
	assert.Equal(t, "generic", parsers[1].Name())
}

func TestPipeline_TypeformSubmission(t *testing.T) {
	p := resolve.NewPipeline(nil, payloads.Default()...)
	result, err := p.RunWithMeta(context.Background(), resolve.Source{
		Content: readFixture(t, "typeform_safety_check.json"),
		Format:  "json",
		ID:      "webhook",
	}, []string{
		"are_you_safe",
		"license_plate_number",
		"weather_conditions",
		"hazards_present_optional",
		"odometer_reading",
		"date_of_incident",
		"contact_e_mail",
		"towing_deposit",
		"depot_code",
		"shift",
		"trailer_plate",
	})
	require.NoError(t, err)
	assert.Equal(t, "typeform", result.ParserUsed, "typeform wins over the json hint")
	assert.Equal(t, "a3a12ec67a1365927098a606107fac15", result.SubmissionID)

	expected := []struct {
		tier  resolve.MatchTier
		ref   string
		value any
	}{
		{resolve.TierFuzzy, "DlXFaesGBpoF", true},
		{resolve.TierDirect, "license_plate_number", "KX21 ABC"},
		{resolve.TierTitle, "k6TP9oLGgHjl", "Heavy rain"},
		{resolve.TierTitle, "Q7M2fd3KXvbs", "Debris, Oil spill"},
		{resolve.TierTitle, "X4aV8nPq1LzT", 128450.0},
		{resolve.TierTitle, "Zr5Jk2Wm8QcY", "2024-03-01"},
		{resolve.TierTitle, "Hn3Bv6Cx9DfG", "driver@example.com"},
		{resolve.TierTitle, "Pp0Oo9Ii8Uu7", nil},
		{resolve.TierDirect, "depot_code", "MAN-04"},
		{resolve.TierDirect, "shift", "2"},
		{resolve.TierNone, "", nil},
	}
	results := result.Resolution.Results
	require.Len(t, results, len(expected))
	for i, want := range expected {
		assert.Equal(t, want.tier, results[i].MatchTier, results[i].CanonicalName)
		assert.Equal(t, want.ref, results[i].MatchedRef, results[i].CanonicalName)
		assert.Equal(t, want.value, results[i].Value, results[i].CanonicalName)
	}

	report := result.Resolution.Report
	assert.Equal(t, 11, report.Total)
	assert.Equal(t, []string{"trailer_plate"}, report.Unresolved)
	require.Len(t, report.Unsupported, 1)
	assert.Equal(t, "towing_deposit", report.Unsupported[0].CanonicalName)
	assert.Equal(t, resolve.AnswerType("payment"), report.Unsupported[0].Type)
	assert.Equal(t, "1 of 11 expected fields failed to match this submission", report.Summary())
}

func TestPipeline_GenericSubmission(t *testing.T) {
	p := resolve.NewPipeline(nil, payloads.Default()...)
	res, err := p.Run(context.Background(), resolve.Source{
		Content: readFixture(t, "generic_submission.yaml"),
	}, []string{"are_you_safe", "injuries_reported", "driver_name"})
	require.NoError(t, err)

	require.Len(t, res.Results, 3)
	assert.Equal(t, resolve.TierTitle, res.Results[0].MatchTier)
	assert.Equal(t, false, res.Results[0].Value)
	assert.Equal(t, resolve.TierFuzzy, res.Results[1].MatchTier)
	assert.Equal(t, "Minor cuts", res.Results[1].Value)
	assert.Equal(t, resolve.TierDirect, res.Results[2].MatchTier)
	assert.Equal(t, "Sam Okafor", res.Results[2].Value)

	require.Len(t, res.Report.Skipped, 1)
	assert.Equal(t, 2, res.Report.Skipped[0].Index)
	assert.Equal(t, "Orphaned label", res.Report.Skipped[0].Title)
	assert.False(t, res.Report.HasUnresolved())
}

func TestPipeline_GenericSubmissionMentioningFormResponse(t *testing.T) {
	p := resolve.NewPipeline(nil, payloads.Default()...)

	for _, format := range []string{"generic", "yaml", ""} {
		t.Run("format="+format, func(t *testing.T) {
			result, err := p.RunWithMeta(context.Background(), resolve.Source{
				Content: []byte(mentionsFormResponse),
				Format:  format,
				ID:      "upload",
			}, []string{"notes_for_dispatch"})
			require.NoError(t, err)
			assert.Equal(t, "generic", result.ParserUsed)
			assert.Equal(t, "sub-77", result.SubmissionID)
			require.Len(t, result.Resolution.Results, 1)
			assert.Equal(t, resolve.TierTitle, result.Resolution.Results[0].MatchTier)
			assert.Equal(t, "resent the form_response webhook", result.Resolution.Results[0].Value)
		})
	}
}
