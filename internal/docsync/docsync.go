// Package docsync keeps the buffer store in step with editor notifications
// and pushes fresh diagnostics after every edit.
package docsync

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tinovyatkin/nuspec-lsp/internal/buffer"
	"github.com/tinovyatkin/nuspec-lsp/internal/rules"
)

// Publisher delivers the complete diagnostic set of a document to the
// client. Each call replaces whatever was published before for that uri.
type Publisher interface {
	PublishDiagnostics(ctx context.Context, uri string, version int32, diags []rules.Diagnostic) error
}

// Runner computes diagnostics for a stored document.
type Runner interface {
	Run(uri string) []rules.Diagnostic
}

// Coordinator handles document lifecycle notifications. Every open or
// change is processed to completion before the call returns.
type Coordinator struct {
	store     *buffer.Store
	engine    Runner
	publisher Publisher
	log       logrus.FieldLogger
}

// New creates a coordinator.
func New(store *buffer.Store, engine Runner, publisher Publisher, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{store: store, engine: engine, publisher: publisher, log: log}
}

// OnOpen records the initial text of a document and publishes its
// diagnostics.
func (c *Coordinator) OnOpen(ctx context.Context, uri string, version int32, text string) error {
	return c.sync(ctx, "open", uri, version, text)
}

// OnChange replaces the text of a document with fullText and publishes the
// new diagnostics.
func (c *Coordinator) OnChange(ctx context.Context, uri string, version int32, fullText string) error {
	return c.sync(ctx, "change", uri, version, fullText)
}

// OnClose forgets the document. Published diagnostics are left as they are.
func (c *Coordinator) OnClose(_ context.Context, uri string) {
	c.store.Close(uri)
	c.log.WithField("uri", uri).Debug("docsync: close")
}

// OnSave does nothing: the buffer already holds the saved text.
func (c *Coordinator) OnSave(context.Context, string) {}

func (c *Coordinator) sync(ctx context.Context, event, uri string, version int32, text string) error {
	c.store.Update(uri, version, text)
	diags := c.engine.Run(uri)

	c.log.WithFields(logrus.Fields{
		"event":       event,
		"uri":         uri,
		"version":     version,
		"diagnostics": len(diags),
	}).Debug("docsync: publish")

	if err := c.publisher.PublishDiagnostics(ctx, uri, version, diags); err != nil {
		return fmt.Errorf("publish diagnostics for %s: %w", uri, err)
	}
	return nil
}
