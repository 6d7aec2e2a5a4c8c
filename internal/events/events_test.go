package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
	ctxErr error
}

func (r *recorder) Publish(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	r.ctxErr = ctx.Err()
	return r.err
}

func TestNewStampsEvent(t *testing.T) {
	e := New(QuoteSubmitted, 12, "")
	if e.ID == "" || e.Type != QuoteSubmitted || e.SubjectID != 12 {
		t.Fatalf("unexpected event %+v", e)
	}
	if time.Since(e.OccurredAt) > time.Minute {
		t.Fatalf("OccurredAt not set: %v", e.OccurredAt)
	}
	if other := New(QuoteSubmitted, 12, ""); other.ID == e.ID {
		t.Fatalf("event ids must be unique")
	}
}

func TestWithCopiesAttributes(t *testing.T) {
	base := New(ProjectSaved, 1, "admin").With("title", "a")
	derived := base.With("status", "aprovado")

	if len(base.Attributes) != 1 {
		t.Fatalf("With mutated the receiver: %v", base.Attributes)
	}
	if derived.Attributes["title"] != "a" || derived.Attributes["status"] != "aprovado" {
		t.Fatalf("unexpected attributes %v", derived.Attributes)
	}
}

func TestMultiDeliversToAllAndJoinsErrors(t *testing.T) {
	errKafka := errors.New("kafka down")
	errES := errors.New("es down")
	a := &recorder{err: errKafka}
	b := &recorder{}
	c := &recorder{err: errES}

	err := Multi{a, b, c}.Publish(context.Background(), New(Logout, 1, "admin"))
	if !errors.Is(err, errKafka) || !errors.Is(err, errES) {
		t.Fatalf("expected both errors joined, got %v", err)
	}
	for i, r := range []*recorder{a, b, c} {
		if len(r.events) != 1 {
			t.Fatalf("publisher %d got %d events", i, len(r.events))
		}
	}

	if err := (Multi{}).Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("empty Multi: %v", err)
	}
}

func TestEmitDetachesFromRequestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &recorder{err: errors.New("ignored")}
	Emit(ctx, r, New(MediaUploaded, 0, "admin"))

	if len(r.events) != 1 {
		t.Fatalf("event not delivered")
	}
	if r.ctxErr != nil {
		t.Fatalf("publish context already done: %v", r.ctxErr)
	}

	Emit(ctx, nil, Event{})
	if err := (Nop{}).Publish(ctx, Event{}); err != nil {
		t.Fatalf("Nop: %v", err)
	}
}
