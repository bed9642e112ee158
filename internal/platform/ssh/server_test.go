package ssh

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// testKey returns an OpenSSH encoded ed25519 private key and its public key.
func testKey(t *testing.T) ([]byte, ssh.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("failed to convert public key: %v", err)
	}
	return pem.EncodeToMemory(block), sshPub
}

// testServer is a minimal sshd: exec requests are recorded and answered
// with a configurable exit status; the sftp subsystem serves home.
type testServer struct {
	listener net.Listener
	home     string

	mu         sync.Mutex
	commands   []string
	subsystems []string
	exits      map[string]uint32
}

func newTestServer(t *testing.T, authorized ssh.PublicKey) *testServer {
	t.Helper()

	_, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	hostSigner, err := ssh.NewSignerFromKey(hostPriv)
	if err != nil {
		t.Fatalf("failed to create host signer: %v", err)
	}

	config := &ssh.ServerConfig{
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown public key")
		},
	}
	config.AddHostKey(hostSigner)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s := &testServer{
		listener: l,
		home:     t.TempDir(),
		exits:    map[string]uint32{},
	}
	t.Cleanup(func() { _ = l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go s.handleConn(conn, config)
		}
	}()
	return s
}

func (s *testServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *testServer) handleConn(conn net.Conn, config *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		_ = conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(ch, requests)
	}
}

func (s *testServer) handleSession(ch ssh.Channel, requests <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()

	for req := range requests {
		switch req.Type {
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				return
			}
			_ = req.Reply(true, nil)

			status := s.run(ch, payload.Command)
			_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
			return
		case "subsystem":
			var payload struct{ Name string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil || payload.Name != "sftp" {
				_ = req.Reply(false, nil)
				return
			}
			_ = req.Reply(true, nil)
			s.serveSFTP(ch)
			return
		default:
			_ = req.Reply(false, nil)
		}
	}
}

func (s *testServer) run(ch ssh.Channel, command string) uint32 {
	s.mu.Lock()
	s.commands = append(s.commands, command)
	code, failing := s.exits[command]
	s.mu.Unlock()

	if failing {
		_, _ = io.WriteString(ch, "fatal: destination path already exists\n")
		return code
	}
	return 0
}

func (s *testServer) serveSFTP(ch ssh.Channel) {
	s.mu.Lock()
	s.subsystems = append(s.subsystems, "sftp")
	s.mu.Unlock()

	server, err := sftp.NewServer(ch, sftp.WithServerWorkingDirectory(s.home))
	if err != nil {
		return
	}
	_ = server.Serve()
	_ = server.Close()
}

// mkdir creates a directory below the remote home.
func (s *testServer) mkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(s.home, dir), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
}

// file returns the content of a file below the remote home.
func (s *testServer) file(t *testing.T, name string) (string, os.FileMode) {
	t.Helper()
	path := filepath.Join(s.home, name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", name, err)
	}
	return string(data), info.Mode().Perm()
}

func (s *testServer) setExit(command string, code uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exits[command] = code
}

func (s *testServer) recorded() (commands, subsystems []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...), append([]string(nil), s.subsystems...)
}
