package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/imamik/seedmaster/internal/provisioning"
)

const (
	defaultPort        = 22
	defaultUser        = "root"
	defaultDialTimeout = 10 * time.Second
)

// Config holds SSH channel configuration.
type Config struct {
	Port int
	User string

	// PrivateKey is a PEM or OpenSSH encoded private key. When empty the
	// keys of the running ssh-agent (SSH_AUTH_SOCK) are used.
	PrivateKey []byte

	// DialTimeout bounds TCP connect and handshake.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback
}

// Channel runs commands and copies files on remote hosts.
// It dials a new connection per call.
type Channel struct {
	config *Config
	auth   ssh.AuthMethod
	closer func() error
}

// NewChannel creates a Channel and validates the credentials.
func NewChannel(cfg *Config) (*Channel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.User == "" {
		configCopy.User = defaultUser
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // fresh instance, key unknown
	}

	c := &Channel{config: &configCopy, closer: func() error { return nil }}

	if len(configCopy.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		c.auth = ssh.PublicKeys(signer)
		return c, nil
	}

	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, fmt.Errorf("no private key configured and SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ssh-agent: %w", err)
	}
	c.auth = ssh.PublicKeysCallback(agent.NewClient(conn).Signers)
	c.closer = conn.Close
	return c, nil
}

// LoadPrivateKey reads a private key file, expanding a leading "~/".
func LoadPrivateKey(path string) ([]byte, error) {
	if len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = home + path[1:]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	return data, nil
}

// Close releases the ssh-agent connection, if any.
func (c *Channel) Close() error {
	return c.closer()
}

// Execute implements provisioning.RemoteChannel. A command exiting non-zero
// yields a *provisioning.CommandError.
func (c *Channel) Execute(ctx context.Context, host, command string) error {
	return c.withSession(ctx, host, func(session *ssh.Session) error {
		output, err := session.CombinedOutput(command)
		return commandError(host, command, output, err)
	})
}

// withSession opens a session on host and runs fn.
func (c *Channel) withSession(ctx context.Context, host string, fn func(*ssh.Session) error) error {
	return c.withClient(ctx, host, func(client *ssh.Client) error {
		session, err := client.NewSession()
		if err != nil {
			return fmt.Errorf("failed to create SSH session on %s: %w", host, err)
		}
		defer func() { _ = session.Close() }()
		return fn(session)
	})
}

// withClient dials host and runs fn on the connection. Cancelling ctx
// closes the connection.
func (c *Channel) withClient(ctx context.Context, host string, fn func(*ssh.Client) error) error {
	client, err := c.connect(ctx, host)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	if err := fn(client); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (c *Channel) connect(ctx context.Context, host string) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{c.auth},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}
	addr := net.JoinHostPort(host, strconv.Itoa(c.config.Port))

	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	if err := conn.SetDeadline(time.Now().Add(c.config.DialTimeout)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set handshake deadline: %w", err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("SSH handshake with %s failed: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		_ = sshConn.Close()
		return nil, fmt.Errorf("failed to clear handshake deadline: %w", err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// commandError maps a session result to the RemoteChannel error contract.
func commandError(host, command string, output []byte, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return &provisioning.CommandError{
			Host:     host,
			Command:  command,
			ExitCode: exitErr.ExitStatus(),
			Output:   string(output),
		}
	}
	return fmt.Errorf("command failed on %s: %w", host, err)
}
