// Package mocks provides mock implementations for testing.
//
// This package should ONLY be imported in test files (_test.go).
package mocks

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/remote"
)

// CallKind tells which Channel method was invoked.
type CallKind string

const (
	CallRun       CallKind = "run"
	CallRunScript CallKind = "script"
)

// Call is one recorded invocation of a MockChannel.
type Call struct {
	Kind     CallKind
	Endpoint remote.Endpoint
	// Payload is the command for Run and the script for RunScript.
	Payload string
}

// MockChannel is a mock implementation of remote.Channel.
//
// Every call is recorded. If a function field is nil, the call succeeds with exit status 0.
//
// Example usage:
//
//	mock := &MockChannel{
//	    RunScriptFunc: func(ctx context.Context, ep remote.Endpoint, script string) (*remote.Result, error) {
//	        return &remote.Result{ExitCode: 1, Stderr: "failure"}, nil
//	    },
//	}
type MockChannel struct {
	// RunFunc is called by Run if not nil
	RunFunc func(ctx context.Context, ep remote.Endpoint, command string) (*remote.Result, error)

	// RunScriptFunc is called by RunScript if not nil
	RunScriptFunc func(ctx context.Context, ep remote.Endpoint, script string) (*remote.Result, error)

	mu    sync.Mutex
	calls []Call
}

// NewMockChannel creates a mock channel where every command succeeds.
func NewMockChannel() *MockChannel {
	return &MockChannel{}
}

func (m *MockChannel) record(kind CallKind, ep remote.Endpoint, payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Kind: kind, Endpoint: ep, Payload: payload})
}

// Run records the command and delegates to RunFunc.
func (m *MockChannel) Run(ctx context.Context, ep remote.Endpoint, command string) (*remote.Result, error) {
	m.record(CallRun, ep, command)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, ep, command)
	}
	return &remote.Result{}, nil
}

// RunScript records the script and delegates to RunScriptFunc.
func (m *MockChannel) RunScript(ctx context.Context, ep remote.Endpoint, script string) (*remote.Result, error) {
	m.record(CallRunScript, ep, script)
	if m.RunScriptFunc != nil {
		return m.RunScriptFunc(ctx, ep, script)
	}
	return &remote.Result{}, nil
}

// Calls returns a copy of the recorded calls in order.
func (m *MockChannel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

var (
	clearPattern = regexp.MustCompile(`^/ip firewall address-list remove \[find list="([^"]*)"\]$`)
	addPattern   = regexp.MustCompile(`^/ip firewall address-list add list="([^"]*)" address="([^"]*)" comment="([^"]*)"$`)
)

// FakeRouter interprets address-list directives against in-memory lists.
//
// FailScript, when set, is consulted before each script with its 1-based sequence number;
// a non-nil result is returned instead of applying the script.
type FakeRouter struct {
	FailClear  *remote.Result
	FailScript func(n int) *remote.Result

	mu      sync.Mutex
	lists   map[string][]string
	scripts int
}

// NewFakeRouter creates a router whose lists are pre-populated with initial.
func NewFakeRouter(initial map[string][]string) *FakeRouter {
	lists := make(map[string][]string, len(initial))
	for name, entries := range initial {
		lists[name] = append([]string(nil), entries...)
	}
	return &FakeRouter{lists: lists}
}

// Channel returns a MockChannel wired to the router.
func (r *FakeRouter) Channel() *MockChannel {
	return &MockChannel{
		RunFunc: func(_ context.Context, _ remote.Endpoint, command string) (*remote.Result, error) {
			return r.exec(command), nil
		},
		RunScriptFunc: func(_ context.Context, _ remote.Endpoint, script string) (*remote.Result, error) {
			r.mu.Lock()
			r.scripts++
			n := r.scripts
			r.mu.Unlock()
			if r.FailScript != nil {
				if res := r.FailScript(n); res != nil {
					return res, nil
				}
			}
			for _, line := range strings.Split(script, "\n") {
				if line == "" {
					continue
				}
				if res := r.exec(line); !res.Success() {
					return res, nil
				}
			}
			return &remote.Result{}, nil
		},
	}
}

// List returns a copy of the named list.
func (r *FakeRouter) List(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lists[name]...)
}

func (r *FakeRouter) exec(line string) *remote.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m := clearPattern.FindStringSubmatch(line); m != nil {
		if r.FailClear != nil {
			return r.FailClear
		}
		delete(r.lists, m[1])
		return &remote.Result{}
	}
	if m := addPattern.FindStringSubmatch(line); m != nil {
		r.lists[m[1]] = append(r.lists[m[1]], m[2])
		return &remote.Result{}
	}
	return &remote.Result{ExitCode: 1, Stderr: "bad command name (line 1 column 1)"}
}
