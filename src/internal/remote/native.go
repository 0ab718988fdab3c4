package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	apperrors "github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

const defaultConnectTimeout = 15 * time.Second

// NativeOptions configures the in-process SSH transport.
type NativeOptions struct {
	// IdentityFile is an unencrypted private key used for public key authentication.
	IdentityFile string
	// UseAgent enables authentication through the agent at $SSH_AUTH_SOCK.
	UseAgent bool
	// ConnectTimeout bounds TCP connect and SSH handshake.
	ConnectTimeout time.Duration
}

// NativeChannel runs commands over golang.org/x/crypto/ssh. Host keys are not verified.
// Each call dials a new connection and closes it when the command finishes.
type NativeChannel struct {
	opts NativeOptions
}

// NewNativeChannel creates an in-process SSH channel.
func NewNativeChannel(opts NativeOptions) *NativeChannel {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	return &NativeChannel{opts: opts}
}

// Run executes a single command line.
func (c *NativeChannel) Run(ctx context.Context, ep Endpoint, command string) (*Result, error) {
	return c.run(ctx, ep, func(session *ssh.Session) error {
		return session.Run(strings.TrimRight(command, "\n"))
	})
}

// RunScript feeds script to the remote shell over stdin.
func (c *NativeChannel) RunScript(ctx context.Context, ep Endpoint, script string) (*Result, error) {
	return c.run(ctx, ep, func(session *ssh.Session) error {
		session.Stdin = strings.NewReader(script)
		if err := session.Shell(); err != nil {
			return err
		}
		return session.Wait()
	})
}

func (c *NativeChannel) run(ctx context.Context, ep Endpoint, exec func(*ssh.Session) error) (*Result, error) {
	cfg, closeAuth, err := c.clientConfig(ep.User)
	if err != nil {
		return nil, err
	}
	defer closeAuth()

	addr := ep.Address()
	log.Debugf("Dialing %s as %s", addr, ep.User)

	dialer := net.Dialer{Timeout: c.opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, apperrors.NewConnectionError(fmt.Sprintf("failed to connect to %s", addr), err)
	}
	if err := conn.SetDeadline(time.Now().Add(c.opts.ConnectTimeout)); err != nil {
		conn.Close()
		return nil, apperrors.NewConnectionError("failed to set handshake deadline", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, apperrors.NewConnectionError(fmt.Sprintf("ssh handshake with %s failed", addr), err)
	}
	// Commands may run for a long time once the session is established.
	_ = conn.SetDeadline(time.Time{})

	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-done:
		}
	}()

	session, err := client.NewSession()
	if err != nil {
		return nil, apperrors.NewConnectionError(fmt.Sprintf("failed to open session on %s", addr), err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	runErr := exec(session)
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		return res, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(runErr, &exitErr) {
		res.ExitCode = exitErr.ExitStatus()
		return res, nil
	}
	return nil, apperrors.NewConnectionError(fmt.Sprintf("session on %s terminated", addr), runErr)
}

// clientConfig builds the client configuration. The returned func releases the agent
// connection, if any.
func (c *NativeChannel) clientConfig(user string) (*ssh.ClientConfig, func(), error) {
	var methods []ssh.AuthMethod
	closeAuth := func() {}

	if c.opts.IdentityFile != "" {
		key, err := os.ReadFile(c.opts.IdentityFile)
		if err != nil {
			return nil, closeAuth, apperrors.NewConfigError("failed to read identity file", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, closeAuth, apperrors.NewConfigError("failed to parse identity file", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if c.opts.UseAgent {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			agentConn, err := net.Dial("unix", sock)
			if err != nil {
				log.Warnf("Failed to connect to ssh-agent: %v", err)
			} else {
				closeAuth = func() { agentConn.Close() }
				methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(agentConn).Signers))
			}
		} else {
			log.Debugf("SSH_AUTH_SOCK is not set, skipping agent authentication")
		}
	}

	if len(methods) == 0 {
		return nil, closeAuth, apperrors.NewConfigError("no ssh authentication method available (set identity_file or run ssh-agent)", nil)
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.opts.ConnectTimeout,
	}, closeAuth, nil
}
