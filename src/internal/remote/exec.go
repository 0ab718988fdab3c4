package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

const (
	defaultSSHBinary = "ssh"

	// sshFailureExitCode is returned by the ssh client itself when the connection fails.
	sshFailureExitCode = 255
)

// CommandRunner abstracts local process execution.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, stdin io.Reader) (stdout, stderr []byte, exitCode int, err error)
}

// OSRunner executes commands on the local host with os/exec.
// err is only returned when the process could not be started or waited for.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
	}
	return stdout.Bytes(), stderr.Bytes(), -1, err
}

// ExecOptions configures the ssh-binary transport.
type ExecOptions struct {
	// Binary is the ssh client executable (default "ssh").
	Binary string
	// IdentityFile is passed as -i when set.
	IdentityFile string
	// ConnectTimeout is passed as -o ConnectTimeout when positive.
	ConnectTimeout time.Duration
}

// ExecChannel runs commands through the system ssh client in batch mode with host key
// checking disabled.
type ExecChannel struct {
	opts   ExecOptions
	runner CommandRunner
}

// NewExecChannel creates an ssh-binary channel. A nil runner uses OSRunner.
func NewExecChannel(opts ExecOptions, runner CommandRunner) *ExecChannel {
	if opts.Binary == "" {
		opts.Binary = defaultSSHBinary
	}
	if runner == nil {
		runner = OSRunner{}
	}
	return &ExecChannel{opts: opts, runner: runner}
}

// Args builds the ssh argument vector. An empty command leaves the remote side reading
// its console input from stdin.
func (c *ExecChannel) Args(ep Endpoint, command string) []string {
	args := []string{
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=no",
	}
	if c.opts.ConnectTimeout > 0 {
		secs := int(c.opts.ConnectTimeout.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		args = append(args, "-o", "ConnectTimeout="+strconv.Itoa(secs))
	}
	if ep.Port != 0 && ep.Port != DefaultPort {
		args = append(args, "-p", strconv.Itoa(ep.Port))
	}
	if c.opts.IdentityFile != "" {
		args = append(args, "-i", c.opts.IdentityFile)
	}
	if command == "" {
		args = append(args, "-T")
	}
	args = append(args, ep.Destination())
	if command != "" {
		args = append(args, command)
	}
	return args
}

// Run executes a single command line.
func (c *ExecChannel) Run(ctx context.Context, ep Endpoint, command string) (*Result, error) {
	return c.run(ctx, ep, strings.TrimRight(command, "\n"), nil)
}

// RunScript pipes script to the remote console over one session.
func (c *ExecChannel) RunScript(ctx context.Context, ep Endpoint, script string) (*Result, error) {
	return c.run(ctx, ep, "", strings.NewReader(script))
}

func (c *ExecChannel) run(ctx context.Context, ep Endpoint, command string, stdin io.Reader) (*Result, error) {
	args := c.Args(ep, command)
	log.Debugf("Executing %s %s", c.opts.Binary, strings.Join(args, " "))

	stdout, stderr, code, err := c.runner.Run(ctx, c.opts.Binary, args, stdin)
	if err != nil {
		return nil, apperrors.NewConnectionError(fmt.Sprintf("failed to execute %s for %s", c.opts.Binary, ep), err)
	}

	res := &Result{ExitCode: code, Stdout: string(stdout), Stderr: string(stderr)}
	if code == sshFailureExitCode {
		return res, apperrors.NewConnectionError(
			fmt.Sprintf("ssh connection to %s failed", ep),
			errors.New(strings.TrimSpace(res.Stderr)))
	}
	return res, nil
}
