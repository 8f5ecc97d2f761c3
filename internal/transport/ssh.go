// Package transport runs read-only CLI commands on switches over SSH.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// Executor runs guarded commands against a switch.
type Executor interface {
	Execute(ctx context.Context, host, cmd string) (string, error)
	ExecuteBatch(ctx context.Context, host string, cmds []string) (map[string]string, error)
	Prompt(ctx context.Context, host string) (string, error)
}

// Session is one interactive CLI session on a switch.
type Session interface {
	Run(cmd string) (string, error)
	Prompt() string
	Close() error
}

// Opener connects to host and returns a ready session.
type Opener func(ctx context.Context, host string) (Session, error)

type Config struct {
	User     string
	Password string
	Port     int
	Timeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

// SSH is the Executor used in production. Every call opens its own session
// and closes it before returning.
type SSH struct {
	cfg  Config
	open Opener
}

func NewSSH(cfg Config) *SSH {
	s := &SSH{cfg: cfg.withDefaults()}
	s.open = s.dial
	return s
}

// NewSSHWithOpener builds an SSH executor on a custom session opener.
func NewSSHWithOpener(cfg Config, open Opener) *SSH {
	return &SSH{cfg: cfg.withDefaults(), open: open}
}

func (s *SSH) Execute(ctx context.Context, host, cmd string) (string, error) {
	out, err := s.ExecuteBatch(ctx, host, []string{cmd})
	if err != nil {
		return "", err
	}
	return out[cmd], nil
}

// ExecuteBatch validates every command up front, then runs them in order in
// a single session. Nothing is sent if any command is rejected.
func (s *SSH) ExecuteBatch(ctx context.Context, host string, cmds []string) (map[string]string, error) {
	for _, cmd := range cmds {
		if err := CheckReadOnly(cmd); err != nil {
			var rejected *Error
			if errors.As(err, &rejected) {
				rejected.Host = host
			}
			log.Printf("[transport] rejected %q for %s", cmd, host)
			return nil, err
		}
	}

	sess, err := s.connect(ctx, host)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	stop := context.AfterFunc(ctx, func() { _ = sess.Close() })
	defer stop()

	out := make(map[string]string, len(cmds))
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return nil, wrap(host, cmd, err)
		}
		res, err := sess.Run(cmd)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				err = fmt.Errorf("%w: %v", cerr, err)
			}
			return nil, wrap(host, cmd, err)
		}
		out[cmd] = res
	}
	return out, nil
}

// Prompt opens a session and returns the hostname shown in the prompt.
func (s *SSH) Prompt(ctx context.Context, host string) (string, error) {
	sess, err := s.connect(ctx, host)
	if err != nil {
		return "", err
	}
	defer sess.Close()
	return sess.Prompt(), nil
}

func (s *SSH) connect(ctx context.Context, host string) (Session, error) {
	sess, err := s.open(ctx, host)
	if err != nil {
		log.Printf("[transport] connect %s: %v", host, err)
		return nil, wrap(host, "", err)
	}
	return sess, nil
}

func (s *SSH) dial(ctx context.Context, host string) (Session, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(s.cfg.Port))

	keyboardInteractive := ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = s.cfg.Password
		}
		return answers, nil
	})
	clientCfg := &ssh.ClientConfig{
		User: s.cfg.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(s.cfg.Password),
			keyboardInteractive,
		},
		Timeout:         s.cfg.Timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // switches are addressed by inventory IP
	}

	d := net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Now().Add(s.cfg.Timeout))
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake: %w", err)
	}
	_ = conn.SetDeadline(time.Time{})
	client := ssh.NewClient(c, chans, reqs)

	sess, err := newExpectSession(client, s.cfg.Timeout)
	if err != nil {
		client.Close()
		return nil, err
	}
	return sess, nil
}
