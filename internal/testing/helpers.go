package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/imamik/seedmaster/internal/provisioning"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CountingSleeper counts pauses instead of waiting.
type CountingSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

// Sleep has the retry.SleepFunc signature.
func (s *CountingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return nil
}

// Count returns the number of recorded pauses.
func (s *CountingSleeper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sleeps)
}

// Durations returns the recorded pause lengths.
func (s *CountingSleeper) Durations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.sleeps))
	copy(out, s.sleeps)
	return out
}

// RecordingObserver keeps every progress line and event.
type RecordingObserver struct {
	mu     *sync.Mutex
	lines  *[]string
	events *[]provisioning.Event
	fields map[string]string
}

// NewRecordingObserver creates an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{
		mu:     &sync.Mutex{},
		lines:  &[]string{},
		events: &[]provisioning.Event{},
		fields: map[string]string{},
	}
}

// Printf implements provisioning.Observer.
func (r *RecordingObserver) Printf(format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.lines = append(*r.lines, fmt.Sprintf(format, v...))
}

// Event implements provisioning.Observer.
func (r *RecordingObserver) Event(event provisioning.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.Fields == nil {
		event.Fields = map[string]string{}
	}
	for k, v := range r.fields {
		if _, ok := event.Fields[k]; !ok {
			event.Fields[k] = v
		}
	}
	*r.events = append(*r.events, event)
}

// WithFields implements provisioning.Observer. The child shares storage
// with its parent.
func (r *RecordingObserver) WithFields(fields map[string]string) provisioning.Observer {
	merged := make(map[string]string, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &RecordingObserver{mu: r.mu, lines: r.lines, events: r.events, fields: merged}
}

// Lines returns the Printf lines.
func (r *RecordingObserver) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(*r.lines))
	copy(out, *r.lines)
	return out
}

// Events returns the recorded events.
func (r *RecordingObserver) Events() []provisioning.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]provisioning.Event, len(*r.events))
	copy(out, *r.events)
	return out
}

// EventsOfType returns the recorded events of type t.
func (r *RecordingObserver) EventsOfType(t provisioning.EventType) []provisioning.Event {
	var out []provisioning.Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Output joins the Printf lines with newlines.
func (r *RecordingObserver) Output() string {
	return strings.Join(r.Lines(), "\n")
}
