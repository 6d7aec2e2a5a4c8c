// Package events fans domain events out to the audit sinks (Kafka,
// Elasticsearch). Delivery is best effort and never affects an API result.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bragawork/internal/util"
)

const (
	LoginSucceeded = "auth.login_succeeded"
	LoginFailed    = "auth.login_failed"
	Logout         = "auth.logout"
	QuoteSubmitted = "quote.submitted"
	QuoteUpdated   = "quote.updated"
	QuoteDeleted   = "quote.deleted"
	ProjectSaved   = "project.saved"
	ProjectDeleted = "project.deleted"
	MediaUploaded  = "media.uploaded"
)

// PublishTimeout bounds each Emit.
const PublishTimeout = 3 * time.Second

type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	SubjectID  int64             `json:"subject_id,omitempty"`
	Actor      string            `json:"actor,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType string, subjectID int64, actor string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		SubjectID:  subjectID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}

// With returns a copy of e carrying an extra attribute.
func (e Event) With(key, value string) Event {
	attrs := make(map[string]string, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attributes = attrs
	return e
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi delivers to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes under its own bounded context, detached from request
// cancellation, and logs failures at warn level.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	if err := p.Publish(ctx, event); err != nil {
		util.Warn("Event delivery failed",
			util.String("event_type", event.Type),
			util.String("event_id", event.ID),
			util.ErrorField(err))
	}
}
