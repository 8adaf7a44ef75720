// SPDX-License-Identifier: Apache-2.0

package resolve

import "context"

// Source is a raw webhook body awaiting parsing.
type Source struct {
	Content []byte
	// Format is an optional hint such as "typeform" or "yaml".
	Format string
	ID     string
}

// Submission is a parsed payload: the form definition delivered with it and
// the submitted answers, in provider order.
type Submission struct {
	ID         string
	FormID     string
	Definition []ExternalField
	Answers    []Answer
}

// PayloadParser turns one provider's webhook body into a Submission.
type PayloadParser interface {
	CanHandle(source Source) bool
	Parse(ctx context.Context, source Source) (Submission, error)
	Name() string
}
