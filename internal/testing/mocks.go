package testing

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/seedmaster/internal/provisioning"
)

// MockProvider is a testify mock of provisioning.Provider.
// AcceptedStatus defaults to 202 unless Accepted is set.
type MockProvider struct {
	mock.Mock
	Accepted int
}

// Name implements provisioning.Provider.
func (m *MockProvider) Name() string {
	return "mock"
}

// AcceptedStatus implements provisioning.Provider.
func (m *MockProvider) AcceptedStatus() int {
	if m.Accepted != 0 {
		return m.Accepted
	}
	return http.StatusAccepted
}

// CreateInstance implements provisioning.Provider.
func (m *MockProvider) CreateInstance(ctx context.Context, req provisioning.CreateRequest) (*provisioning.CreateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provisioning.CreateResponse), args.Error(1)
}

// ListActions implements provisioning.Provider.
func (m *MockProvider) ListActions(ctx context.Context, instanceID int64) ([]provisioning.Action, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provisioning.Action), args.Error(1)
}

// ListInstances implements provisioning.Provider.
func (m *MockProvider) ListInstances(ctx context.Context) ([]provisioning.Instance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provisioning.Instance), args.Error(1)
}

// Actions builds an action list with the given statuses.
func Actions(statuses ...provisioning.ActionStatus) []provisioning.Action {
	actions := make([]provisioning.Action, len(statuses))
	for i, s := range statuses {
		actions[i] = provisioning.Action{ID: int64(i + 1), Type: "create", Status: s}
	}
	return actions
}

// Call is one recorded RemoteChannel invocation.
type Call struct {
	// Op is "execute" or "transfer".
	Op         string
	Host       string
	Command    string
	LocalPath  string
	RemotePath string
}

// String renders the call the way a shell user would type it.
func (c Call) String() string {
	if c.Op == "transfer" {
		return fmt.Sprintf("transfer %s -> %s:%s", c.LocalPath, c.Host, c.RemotePath)
	}
	return fmt.Sprintf("execute %s: %s", c.Host, c.Command)
}

// ScriptedChannel is a RemoteChannel double. Each call is recorded; the
// Script function, when set, decides the result of the n-th call (1-based).
type ScriptedChannel struct {
	mu     sync.Mutex
	calls  []Call
	Script func(n int, call Call) error
}

// Execute implements provisioning.RemoteChannel.
func (s *ScriptedChannel) Execute(_ context.Context, host, command string) error {
	return s.record(Call{Op: "execute", Host: host, Command: command})
}

// Transfer implements provisioning.RemoteChannel.
func (s *ScriptedChannel) Transfer(_ context.Context, localPath, host, remotePath string) error {
	return s.record(Call{Op: "transfer", Host: host, LocalPath: localPath, RemotePath: remotePath})
}

func (s *ScriptedChannel) record(call Call) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	n := len(s.calls)
	script := s.Script
	s.mu.Unlock()

	if script == nil {
		return nil
	}
	return script(n, call)
}

// Calls returns a copy of the recorded calls.
func (s *ScriptedChannel) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Count returns how many recorded calls satisfy match.
func (s *ScriptedChannel) Count(match func(Call) bool) int {
	n := 0
	for _, c := range s.Calls() {
		if match(c) {
			n++
		}
	}
	return n
}

// FailFirstAttempts returns a script that fails every call matching failOn
// with err until it has failed the given number of times.
func FailFirstAttempts(times int, failOn func(Call) bool, err error) func(int, Call) error {
	var mu sync.Mutex
	failed := 0
	return func(_ int, call Call) error {
		if !failOn(call) {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		if failed < times {
			failed++
			return err
		}
		return nil
	}
}

// MockArchiver is a testify mock of provisioning.Archiver.
type MockArchiver struct {
	mock.Mock
}

// Archive implements provisioning.Archiver.
func (m *MockArchiver) Archive(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}
