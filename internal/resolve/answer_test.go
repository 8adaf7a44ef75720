// SPDX-License-Identifier: Apache-2.0

package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formresolve/formresolve-mcp/internal/resolve"
)

func ptr[T any](v T) *T { return &v }

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name   string
		answer resolve.Answer
		want   any
	}{
		{
			name:   "text",
			answer: resolve.Answer{Type: resolve.AnswerText, Payload: resolve.Payload{Text: ptr("ABC-123")}},
			want:   "ABC-123",
		},
		{
			name:   "text absent",
			answer: resolve.Answer{Type: resolve.AnswerText},
			want:   nil,
		},
		{
			name:   "text present but empty",
			answer: resolve.Answer{Type: resolve.AnswerText, Payload: resolve.Payload{Text: ptr("")}},
			want:   "",
		},
		{
			name:   "email",
			answer: resolve.Answer{Type: resolve.AnswerEmail, Payload: resolve.Payload{Email: ptr("driver@example.com")}},
			want:   "driver@example.com",
		},
		{
			name:   "email falls back to text member",
			answer: resolve.Answer{Type: resolve.AnswerEmail, Payload: resolve.Payload{Text: ptr("driver@example.com")}},
			want:   "driver@example.com",
		},
		{
			name:   "url",
			answer: resolve.Answer{Type: resolve.AnswerURL, Payload: resolve.Payload{URL: ptr("https://example.com")}},
			want:   "https://example.com",
		},
		{
			name:   "phone number",
			answer: resolve.Answer{Type: resolve.AnswerPhoneNumber, Payload: resolve.Payload{PhoneNumber: ptr("+15550100")}},
			want:   "+15550100",
		},
		{
			name:   "choice label",
			answer: resolve.Answer{Type: resolve.AnswerChoice, Payload: resolve.Payload{Choice: &resolve.Choice{Label: "Sunny", Other: "ignored"}}},
			want:   "Sunny",
		},
		{
			name:   "choice other",
			answer: resolve.Answer{Type: resolve.AnswerChoice, Payload: resolve.Payload{Choice: &resolve.Choice{Other: "Hail"}}},
			want:   "Hail",
		},
		{
			name:   "choice empty",
			answer: resolve.Answer{Type: resolve.AnswerChoice, Payload: resolve.Payload{Choice: &resolve.Choice{}}},
			want:   nil,
		},
		{
			name:   "choice absent",
			answer: resolve.Answer{Type: resolve.AnswerChoice},
			want:   nil,
		},
		{
			name:   "choices labels joined",
			answer: resolve.Answer{Type: resolve.AnswerChoices, Payload: resolve.Payload{Choices: &resolve.Choices{Labels: []string{"Cones", "Vest", "Flares"}}}},
			want:   "Cones, Vest, Flares",
		},
		{
			name:   "choices other when no labels",
			answer: resolve.Answer{Type: resolve.AnswerChoices, Payload: resolve.Payload{Choices: &resolve.Choices{Labels: []string{}, Other: "Blanket"}}},
			want:   "Blanket",
		},
		{
			name:   "choices absent",
			answer: resolve.Answer{Type: resolve.AnswerChoices},
			want:   nil,
		},
		{
			name:   "boolean true",
			answer: resolve.Answer{Type: resolve.AnswerBoolean, Payload: resolve.Payload{Boolean: ptr(true)}},
			want:   true,
		},
		{
			name:   "boolean explicit false",
			answer: resolve.Answer{Type: resolve.AnswerBoolean, Payload: resolve.Payload{Boolean: ptr(false)}},
			want:   false,
		},
		{
			name:   "boolean absent defaults to false",
			answer: resolve.Answer{Type: resolve.AnswerBoolean},
			want:   false,
		},
		{
			name:   "number",
			answer: resolve.Answer{Type: resolve.AnswerNumber, Payload: resolve.Payload{Number: ptr(42.5)}},
			want:   42.5,
		},
		{
			name:   "number absent",
			answer: resolve.Answer{Type: resolve.AnswerNumber},
			want:   nil,
		},
		{
			name:   "date",
			answer: resolve.Answer{Type: resolve.AnswerDate, Payload: resolve.Payload{Date: ptr("2024-03-01")}},
			want:   "2024-03-01",
		},
		{
			name:   "file url",
			answer: resolve.Answer{Type: resolve.AnswerFileURL, Payload: resolve.Payload{FileURL: ptr("https://files.example.com/a.jpg")}},
			want:   "https://files.example.com/a.jpg",
		},
		{
			name:   "unsupported type",
			answer: resolve.Answer{Type: "payment", Payload: resolve.Payload{Text: ptr("$10")}},
			want:   nil,
		},
		{
			name:   "empty type",
			answer: resolve.Answer{},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve.ExtractValue(tt.answer))
		})
	}
}

func TestAnswerType_Supported(t *testing.T) {
	for _, typ := range []resolve.AnswerType{
		resolve.AnswerText, resolve.AnswerEmail, resolve.AnswerURL, resolve.AnswerPhoneNumber,
		resolve.AnswerChoice, resolve.AnswerChoices, resolve.AnswerBoolean, resolve.AnswerNumber,
		resolve.AnswerDate, resolve.AnswerFileURL,
	} {
		assert.True(t, typ.Supported(), string(typ))
	}
	assert.False(t, resolve.AnswerType("payment").Supported())
	assert.False(t, resolve.AnswerType("").Supported())
	assert.False(t, resolve.AnswerType("TEXT").Supported())
}
