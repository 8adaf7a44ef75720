// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned when no registered parser accepts a source.
var ErrUnsupportedFormat = eris.New("unsupported payload format")

type Pipeline struct {
	parsers  []PayloadParser
	resolver *Resolver
	logger   *zap.Logger
}

// NewPipeline creates a Pipeline that resolves with resolver (the default
// Resolver when nil) and selects among parsers in registration order.
func NewPipeline(resolver *Resolver, parsers ...PayloadParser) *Pipeline {
	if resolver == nil {
		resolver = defaultResolver
	}
	return &Pipeline{
		parsers:  parsers,
		resolver: resolver,
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger used for per-submission outcome lines.
func (p *Pipeline) WithLogger(logger *zap.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// RunResult is the output of a successful pipeline run.
type RunResult struct {
	SubmissionID string
	FormID       string
	ParserUsed   string
	Resolution   Resolution
}

func (p *Pipeline) Run(ctx context.Context, source Source, canonicalFields []string) (Resolution, error) {
	result, err := p.RunWithMeta(ctx, source, canonicalFields)
	if err != nil {
		return Resolution{}, err
	}
	return result.Resolution, nil
}

func (p *Pipeline) RunWithMeta(ctx context.Context, source Source, canonicalFields []string) (RunResult, error) {
	parser, err := p.selectParser(source)
	if err != nil {
		return RunResult{}, err
	}

	sub, err := parser.Parse(ctx, source)
	if err != nil {
		return RunResult{}, eris.Wrapf(err, "parser %q failed", parser.Name())
	}
	if sub.ID == "" {
		sub.ID = source.ID
	}

	resolution := p.resolver.Resolve(canonicalFields, sub.Answers, sub.Definition)
	p.logOutcome(sub, parser.Name(), resolution.Report)

	return RunResult{
		SubmissionID: sub.ID,
		FormID:       sub.FormID,
		ParserUsed:   parser.Name(),
		Resolution:   resolution,
	}, nil
}

func (p *Pipeline) logOutcome(sub Submission, parser string, report Report) {
	fields := []zap.Field{
		zap.String("submission", sub.ID),
		zap.String("form", sub.FormID),
		zap.String("parser", parser),
		zap.Int("requested", report.Total),
		zap.Int("matched", report.Matched()),
		zap.Int("direct", len(report.Direct)),
		zap.Int("title", len(report.Title)),
		zap.Int("fuzzy", len(report.Fuzzy)),
		zap.Int("unsupported", len(report.Unsupported)),
		zap.Int("skipped_definitions", len(report.Skipped)),
	}
	if report.HasUnresolved() {
		p.logger.Warn(report.Summary(), append(fields, zap.Strings("unresolved", report.Unresolved))...)
		return
	}
	p.logger.Info("submission resolved", fields...)
}

// selectParser returns the first registered parser that can handle the given source.
func (p *Pipeline) selectParser(source Source) (PayloadParser, error) {
	for _, parser := range p.parsers {
		if parser.CanHandle(source) {
			return parser, nil
		}
	}
	return nil, eris.Wrapf(ErrUnsupportedFormat, "no parser found for source %q (format hint: %q)", source.ID, source.Format)
}

// RegisteredParsers returns the names of all currently registered parsers.
func (p *Pipeline) RegisteredParsers() []string {
	names := make([]string, len(p.parsers))
	for i, parser := range p.parsers {
		names[i] = parser.Name()
	}
	return names
}
