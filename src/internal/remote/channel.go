package remote

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// DefaultPort is the SSH port used when an endpoint does not set one.
const DefaultPort = 22

// Endpoint identifies the remote device and the identity used to log into it.
type Endpoint struct {
	Host string
	Port int
	User string
}

// Destination returns the user@host form accepted by ssh.
func (e Endpoint) Destination() string {
	return fmt.Sprintf("%s@%s", e.User, e.Host)
}

// Address returns host:port, defaulting to port 22.
func (e Endpoint) Address() string {
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(port))
}

func (e Endpoint) String() string {
	if e.Port == 0 || e.Port == DefaultPort {
		return e.Destination()
	}
	return fmt.Sprintf("%s:%d", e.Destination(), e.Port)
}

// Result is the outcome of a command the remote side actually ran.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the remote command exited with status 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Channel executes commands on a remote device. Every call opens its own session.
//
// A non-nil error means the command could not be delivered at all (connection error).
// A delivered command that failed is reported through Result.ExitCode.
type Channel interface {
	// Run executes a single command line.
	Run(ctx context.Context, ep Endpoint, command string) (*Result, error)
	// RunScript feeds a multi-line script to the remote console through standard input.
	RunScript(ctx context.Context, ep Endpoint, script string) (*Result, error)
}
