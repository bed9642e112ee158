package provisioning

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Observer receives the human-readable progress of a run.
type Observer interface {
	// Printf writes a free-form progress line.
	Printf(format string, v ...any)

	// Event emits a structured event.
	Event(event Event)

	// WithFields returns an Observer that attaches fields to every event.
	WithFields(fields map[string]string) Observer
}

// Event is one step of a run worth telling the operator about.
type Event struct {
	Type      EventType
	Phase     string
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType classifies an Event.
type EventType string

const (
	// EventPhaseStarted indicates a phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates an instance create request was sent.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates the provider accepted the instance.
	EventResourceCreated EventType = "resource.created"

	// EventRetry indicates a loop is sleeping before another attempt.
	EventRetry EventType = "retry"
	// EventWarning reports a problem that does not stop the run.
	EventWarning EventType = "warning"
)

// Phase names used in events and metrics.
const (
	PhaseCreate    = "create"
	PhaseWait      = "wait"
	PhaseResolve   = "resolve"
	PhaseArtifact  = "artifact"
	PhaseArchive   = "archive"
	PhaseBootstrap = "bootstrap"
)

var (
	styleStarted   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ConsoleObserver writes events as single lines to a writer.
type ConsoleObserver struct {
	mu            *sync.Mutex
	out           io.Writer
	styled        bool
	contextFields map[string]string
}

// NewConsoleObserver creates an observer writing to out. Output is styled
// when out is a terminal.
func NewConsoleObserver(out io.Writer) *ConsoleObserver {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd())
	}
	return &ConsoleObserver{
		mu:            &sync.Mutex{},
		out:           out,
		styled:        styled,
		contextFields: make(map[string]string),
	}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.writeLine(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}
	o.writeLine(o.formatEvent(event))
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	merged := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ConsoleObserver{
		mu:            o.mu,
		out:           o.out,
		styled:        o.styled,
		contextFields: merged,
	}
}

func (o *ConsoleObserver) writeLine(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.out, line)
}

func (o *ConsoleObserver) formatEvent(event Event) string {
	var parts []string

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, o.style(event.Type, event.Message))

	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, o.muted(fmt.Sprintf("(%s)", strings.Join(fieldParts, ", "))))
	}

	return strings.Join(parts, " ")
}

func (o *ConsoleObserver) style(t EventType, msg string) string {
	if !o.styled {
		return msg
	}
	switch t {
	case EventPhaseStarted, EventResourceCreating:
		return styleStarted.Render(msg)
	case EventPhaseCompleted, EventResourceCreated:
		return styleCompleted.Render(msg)
	case EventPhaseFailed:
		return styleFailed.Render(msg)
	default:
		return msg
	}
}

func (o *ConsoleObserver) muted(s string) string {
	if !o.styled {
		return s
	}
	return styleMuted.Render(s)
}

// LogPhaseStart emits a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete emits a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed emits a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogRetry emits a retry event for the given attempt.
func LogRetry(observer Observer, phase string, attempt int, wait time.Duration, reason string) {
	observer.Event(Event{
		Type:    EventRetry,
		Phase:   phase,
		Message: fmt.Sprintf("%s, retrying in %v", reason, wait),
		Fields: map[string]string{
			"attempt": fmt.Sprintf("%d", attempt),
		},
	})
}

// NopObserver discards everything.
type NopObserver struct{}

// Printf implements Observer.
func (NopObserver) Printf(string, ...any) {}

// Event implements Observer.
func (NopObserver) Event(Event) {}

// WithFields implements Observer.
func (n NopObserver) WithFields(map[string]string) Observer { return n }
