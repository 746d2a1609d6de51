// Package lint runs the nuspec checks over a document and collects their
// diagnostics.
package lint

import (
	"github.com/sirupsen/logrus"

	"github.com/tinovyatkin/nuspec-lsp/internal/buffer"
	"github.com/tinovyatkin/nuspec-lsp/internal/rules"
	"github.com/tinovyatkin/nuspec-lsp/internal/rules/nuspec"
	"github.com/tinovyatkin/nuspec-lsp/internal/schema"
	"github.com/tinovyatkin/nuspec-lsp/internal/textpos"
)

// Engine produces diagnostics for documents held in a buffer store. It
// keeps no per-document state and is safe for concurrent use.
type Engine struct {
	store *buffer.Store
	rules []rules.Rule
	log   logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-run debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithRules replaces the built-in rule set.
func WithRules(rs ...rules.Rule) Option {
	return func(e *Engine) {
		e.rules = rs
	}
}

// NewEngine creates an engine that validates against s and scans for
// templated values. store may be nil when only Lint is used.
func NewEngine(store *buffer.Store, s *schema.Schema, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		rules: []rules.Rule{
			nuspec.NewSchemaRule(s),
			nuspec.NewTemplatedValueRule(),
		},
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the rules the engine runs, in order.
func (e *Engine) Rules() []rules.Rule {
	return e.rules
}

// Run lints the current text of the document at uri. A document that is
// not in the store has no diagnostics.
func (e *Engine) Run(uri string) []rules.Diagnostic {
	if e.store == nil {
		return nil
	}
	buf, ok := e.store.Get(uri)
	if !ok {
		e.log.WithField("uri", uri).Debug("lint: no buffer")
		return nil
	}
	diags := e.lint(uri, buf.Text)
	e.log.WithFields(logrus.Fields{
		"uri":         uri,
		"version":     buf.Version,
		"diagnostics": len(diags),
	}).Debug("lint: run")
	return diags
}

// Lint checks text that is not tracked in the store.
func (e *Engine) Lint(text string) []rules.Diagnostic {
	return e.lint("", text)
}

func (e *Engine) lint(uri, text string) []rules.Diagnostic {
	input := rules.LintInput{
		URI:   uri,
		Text:  text,
		Index: textpos.New(text),
	}
	// Non-nil so an empty result still clears client-side diagnostics.
	diags := []rules.Diagnostic{}
	for _, r := range e.rules {
		diags = append(diags, r.Check(input)...)
	}
	return diags
}
