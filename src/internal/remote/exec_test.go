package remote

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	apperrors "github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
)

type fakeRunner struct {
	name  string
	args  []string
	stdin string

	stdout   string
	stderr   string
	exitCode int
	err      error
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, int, error) {
	f.name = name
	f.args = args
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		f.stdin = string(data)
	}
	return []byte(f.stdout), []byte(f.stderr), f.exitCode, f.err
}

var testEndpoint = Endpoint{Host: "192.168.88.1", User: "admin"}

func TestExecChannel_Args(t *testing.T) {
	tests := []struct {
		name    string
		opts    ExecOptions
		ep      Endpoint
		command string
		want    string
	}{
		{
			name:    "single command",
			ep:      testEndpoint,
			command: "/ip firewall address-list remove [find list=\"RU\"]",
			want:    `-o BatchMode=yes -o StrictHostKeyChecking=no admin@192.168.88.1 /ip firewall address-list remove [find list="RU"]`,
		},
		{
			name: "script mode",
			ep:   testEndpoint,
			want: "-o BatchMode=yes -o StrictHostKeyChecking=no -T admin@192.168.88.1",
		},
		{
			name:    "port, identity and timeout",
			opts:    ExecOptions{IdentityFile: "/root/.ssh/id_ed25519", ConnectTimeout: 10 * time.Second},
			ep:      Endpoint{Host: "router", Port: 2222, User: "sync"},
			command: "/quit",
			want:    "-o BatchMode=yes -o StrictHostKeyChecking=no -o ConnectTimeout=10 -p 2222 -i /root/.ssh/id_ed25519 sync@router /quit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewExecChannel(tt.opts, &fakeRunner{})
			if got := strings.Join(c.Args(tt.ep, tt.command), " "); got != tt.want {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecChannel_Run(t *testing.T) {
	runner := &fakeRunner{stdout: "ok"}
	c := NewExecChannel(ExecOptions{}, runner)

	res, err := c.Run(context.Background(), testEndpoint, "/quit\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success() || res.Stdout != "ok" {
		t.Errorf("unexpected result: %+v", res)
	}
	if runner.name != "ssh" {
		t.Errorf("expected default binary ssh, got %q", runner.name)
	}
	if last := runner.args[len(runner.args)-1]; last != "/quit" {
		t.Errorf("trailing newline must be trimmed from command, got %q", last)
	}
}

func TestExecChannel_RunScriptPipesStdin(t *testing.T) {
	runner := &fakeRunner{}
	c := NewExecChannel(ExecOptions{Binary: "/usr/bin/ssh"}, runner)
	script := "line 1\nline 2\n"

	if _, err := c.RunScript(context.Background(), testEndpoint, script); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.stdin != script {
		t.Errorf("stdin = %q, want %q", runner.stdin, script)
	}
	if runner.name != "/usr/bin/ssh" {
		t.Errorf("binary = %q", runner.name)
	}
}

func TestExecChannel_RemoteFailure(t *testing.T) {
	c := NewExecChannel(ExecOptions{}, &fakeRunner{exitCode: 1, stderr: "bad command name"})

	res, err := c.Run(context.Background(), testEndpoint, "/bogus")
	if err != nil {
		t.Fatalf("remote command failures must be reported through Result, got %v", err)
	}
	if res.Success() || res.Stderr != "bad command name" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestExecChannel_ConnectionFailures(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
	}{
		{"ssh exit 255", &fakeRunner{exitCode: 255, stderr: "Connection refused"}},
		{"binary missing", &fakeRunner{exitCode: -1, err: errors.New("executable file not found")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewExecChannel(ExecOptions{}, tt.runner)
			_, err := c.Run(context.Background(), testEndpoint, "/quit")
			if apperrors.CodeOf(err) != apperrors.ErrCodeConnection {
				t.Errorf("expected connection error, got %v", err)
			}
		})
	}
}

func TestEndpoint(t *testing.T) {
	ep := Endpoint{Host: "10.0.0.1", User: "admin"}
	if ep.Address() != "10.0.0.1:22" {
		t.Errorf("Address() = %s", ep.Address())
	}
	if ep.String() != "admin@10.0.0.1" {
		t.Errorf("String() = %s", ep.String())
	}

	ep.Port = 2200
	if ep.Address() != "10.0.0.1:2200" || ep.String() != "admin@10.0.0.1:2200" {
		t.Errorf("unexpected formatting: %s / %s", ep.Address(), ep.String())
	}
}
