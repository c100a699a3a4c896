package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/anstrom/gvmclient/internal/config"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
)

// SSHTransport implements the Transport interface over an SSH session.
// The session either requests a subsystem or runs a command that bridges
// its stdio to the daemon socket on the remote host.
//
// Deadlines are applied to the underlying TCP connection. An expired
// deadline therefore tears down the whole SSH connection.
type SSHTransport struct {
	address      string
	clientConfig *ssh.ClientConfig
	subsystem    string
	command      string
	dialer       net.Dialer

	mu       sync.Mutex
	netConn  net.Conn
	client   *ssh.Client
	session  *ssh.Session
	stdin    io.WriteCloser
	stdout   io.Reader
	deadline time.Time
}

// NewSSHTransport creates a transport for address using the credentials
// and host key settings in cfg.
func NewSSHTransport(address string, cfg config.SSHConfig, timeout time.Duration) (*SSHTransport, error) {
	auth, err := sshAuthMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // host key checking needs a known_hosts file
	if cfg.KnownHostsFile != "" {
		hostKeyCallback, err = knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, gvmerrors.WrapConfigError(gvmerrors.CodeConfiguration, "failed to load known_hosts file", err)
		}
	}

	return &SSHTransport{
		address: address,
		clientConfig: &ssh.ClientConfig{
			User:            cfg.Username,
			Auth:            auth,
			HostKeyCallback: hostKeyCallback,
			Timeout:         timeout,
		},
		subsystem: cfg.Subsystem,
		command:   cfg.Command,
		dialer:    net.Dialer{Timeout: timeout},
	}, nil
}

func sshAuthMethods(cfg config.SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyFile != "" {
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, gvmerrors.WrapConfigError(gvmerrors.CodeConfiguration, "failed to read SSH key file", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, gvmerrors.WrapConfigError(gvmerrors.CodeConfiguration, "failed to parse SSH key file", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if len(methods) == 0 {
		return nil, gvmerrors.NewConfigFieldError(gvmerrors.CodeValidation,
			"SSH needs a password or a key file", "connection.ssh.password", nil)
	}
	return methods, nil
}

// Address returns the remote endpoint
func (t *SSHTransport) Address() string {
	return t.address
}

// Connect dials, authenticates and starts the session
func (t *SSHTransport) Connect(ctx context.Context) error {
	netConn, err := t.dialer.DialContext(ctx, "tcp", t.address)
	if err != nil {
		return connectError(t.address, err)
	}

	// The SSH handshake does not take a context; a deadline on the raw
	// connection bounds it instead.
	if deadline, ok := ctx.Deadline(); ok {
		_ = netConn.SetDeadline(deadline)
	}

	conn, chans, reqs, err := ssh.NewClientConn(netConn, t.address, t.clientConfig)
	if err != nil {
		_ = netConn.Close()
		return connectError(t.address, err)
	}
	_ = netConn.SetDeadline(time.Time{})

	client := ssh.NewClient(conn, chans, reqs)
	session, stdin, stdout, err := t.startSession(client)
	if err != nil {
		_ = client.Close()
		return connectError(t.address, err)
	}

	t.mu.Lock()
	t.netConn = netConn
	t.client = client
	t.session = session
	t.stdin = stdin
	t.stdout = stdout
	t.deadline = time.Time{}
	t.mu.Unlock()
	return nil
}

func (t *SSHTransport) startSession(client *ssh.Client) (*ssh.Session, io.WriteCloser, io.Reader, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open session: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		_ = session.Close()
		return nil, nil, nil, fmt.Errorf("failed to open stdin: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		_ = session.Close()
		return nil, nil, nil, fmt.Errorf("failed to open stdout: %w", err)
	}

	if t.subsystem != "" {
		err = session.RequestSubsystem(t.subsystem)
	} else {
		err = session.Start(t.command)
	}
	if err != nil {
		_ = session.Close()
		return nil, nil, nil, fmt.Errorf("failed to start session: %w", err)
	}

	return session, stdin, stdout, nil
}

// Write sends data on the session's stdin
func (t *SSHTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	stdin := t.stdin
	t.mu.Unlock()

	if stdin == nil {
		return 0, gvmerrors.NewTransportError(gvmerrors.CodeTransport, "write", t.address, ErrNotConnected)
	}

	n, err := stdin.Write(p)
	if err != nil {
		return n, t.classify("write", err)
	}
	return n, nil
}

// Read receives data from the session's stdout
func (t *SSHTransport) Read(p []byte) (int, error) {
	t.mu.Lock()
	stdout := t.stdout
	t.mu.Unlock()

	if stdout == nil {
		return 0, gvmerrors.NewTransportError(gvmerrors.CodeTransport, "read", t.address, ErrNotConnected)
	}

	n, err := stdout.Read(p)
	if err != nil {
		return n, t.classify("read", err)
	}
	return n, nil
}

// classify reports errors after an expired deadline as timeouts; the
// SSH layer surfaces them as a closed channel.
func (t *SSHTransport) classify(op string, err error) error {
	t.mu.Lock()
	deadline := t.deadline
	t.mu.Unlock()

	if !deadline.IsZero() && !time.Now().Before(deadline) {
		return gvmerrors.NewTransportError(gvmerrors.CodeTimeout, op, t.address, err)
	}
	return classify(op, t.address, err)
}

// SetDeadline sets the deadline on the underlying TCP connection
func (t *SSHTransport) SetDeadline(deadline time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.netConn == nil {
		return gvmerrors.NewTransportError(gvmerrors.CodeTransport, "set deadline", t.address, ErrNotConnected)
	}
	if err := t.netConn.SetDeadline(deadline); err != nil {
		return classify("set deadline", t.address, err)
	}
	t.deadline = deadline
	return nil
}

// Close ends the session and the SSH connection
func (t *SSHTransport) Close() error {
	t.mu.Lock()
	session, client := t.session, t.client
	t.session, t.client, t.netConn, t.stdin, t.stdout = nil, nil, nil, nil, nil
	t.mu.Unlock()

	if client == nil {
		return nil
	}

	_ = session.Close()
	if err := client.Close(); err != nil && !isClosedErr(err) {
		return classify("close", t.address, err)
	}
	return nil
}

func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
