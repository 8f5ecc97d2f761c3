package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeSession struct {
	mu      sync.Mutex
	ran     []string
	outputs map[string]string
	failOn  string
	failErr error
	prompt  string
	closed  int
}

func (f *fakeSession) Run(cmd string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, cmd)
	if cmd == f.failOn {
		return "", f.failErr
	}
	return f.outputs[cmd], nil
}

func (f *fakeSession) Prompt() string { return f.prompt }

func (f *fakeSession) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

type fakeOpener struct {
	mu      sync.Mutex
	opens   int
	session *fakeSession
	err     error
}

func (o *fakeOpener) open(ctx context.Context, host string) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		cmd     string
		allowed bool
	}{
		{"show interfaces status", true},
		{"  SHOW version", true},
		{"sh run", true},
		{"terminal length 0", true},
		{"configure terminal", false},
		{"reload", false},
		{"clear counters", false},
		{"no shutdown", false},
		{"write memory", false},
		{"shutdown", false},
		{"", false},
		{"show version\nreload", false},
		{"show clock\rconfigure terminal", false},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			err := CheckReadOnly(tt.cmd)
			if tt.allowed && err != nil {
				t.Errorf("expected %q to be allowed, got %v", tt.cmd, err)
			}
			if !tt.allowed {
				if !errors.Is(err, ErrCommandRejected) {
					t.Errorf("expected %q to be rejected, got %v", tt.cmd, err)
				}
				if KindOf(err) != KindCommandRejected {
					t.Errorf("kind = %q", KindOf(err))
				}
			}
		})
	}
}

func TestRejectedCommandNeverOpensSession(t *testing.T) {
	op := &fakeOpener{session: &fakeSession{}}
	exec := NewSSHWithOpener(Config{}, op.open)

	_, err := exec.Execute(context.Background(), "10.0.0.1", "configure terminal")
	if !errors.Is(err, ErrCommandRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Host != "10.0.0.1" {
		t.Errorf("rejection should carry the host, got %+v", e)
	}
	if op.opens != 0 {
		t.Errorf("session opened %d times for a rejected command", op.opens)
	}
}

func TestBatchWithOneBadCommandSendsNothing(t *testing.T) {
	sess := &fakeSession{}
	op := &fakeOpener{session: sess}
	exec := NewSSHWithOpener(Config{}, op.open)

	_, err := exec.ExecuteBatch(context.Background(), "10.0.0.1",
		[]string{"show version", "reload", "show interfaces"})
	if !errors.Is(err, ErrCommandRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if op.opens != 0 || len(sess.ran) != 0 {
		t.Errorf("expected no I/O, got opens=%d ran=%v", op.opens, sess.ran)
	}
}

func TestBatchRunsSeriallyInOneSession(t *testing.T) {
	sess := &fakeSession{outputs: map[string]string{
		"show version":    "v",
		"show interfaces": "i",
	}}
	op := &fakeOpener{session: sess}
	exec := NewSSHWithOpener(Config{}, op.open)

	out, err := exec.ExecuteBatch(context.Background(), "h", []string{"show version", "show interfaces"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.opens != 1 {
		t.Errorf("expected one session, got %d", op.opens)
	}
	if fmt.Sprint(sess.ran) != "[show version show interfaces]" {
		t.Errorf("commands ran out of order: %v", sess.ran)
	}
	if out["show version"] != "v" || out["show interfaces"] != "i" {
		t.Errorf("unexpected outputs %v", out)
	}
	if sess.closed == 0 {
		t.Error("session should be closed before return")
	}
}

func TestBatchFailureClassified(t *testing.T) {
	sess := &fakeSession{
		failOn:  "show interfaces",
		failErr: status.Error(codes.DeadlineExceeded, "expect timed out"),
	}
	exec := NewSSHWithOpener(Config{}, (&fakeOpener{session: sess}).open)

	_, err := exec.ExecuteBatch(context.Background(), "h", []string{"show version", "show interfaces", "show power inline"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	var e *Error
	if errors.As(err, &e) && e.Command != "show interfaces" {
		t.Errorf("failing command = %q", e.Command)
	}
	if len(sess.ran) != 2 {
		t.Errorf("batch should stop at the first failure, ran %v", sess.ran)
	}
	if sess.closed == 0 {
		t.Error("session should be closed on failure")
	}
}

func TestConnectFailure(t *testing.T) {
	op := &fakeOpener{err: errors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none password]")}
	exec := NewSSHWithOpener(Config{}, op.open)

	_, err := exec.Execute(context.Background(), "h", "show version")
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected auth failure, got %v", err)
	}
	if Reason(err) != "auth_failed" {
		t.Errorf("reason = %q", Reason(err))
	}
}

func TestPrompt(t *testing.T) {
	exec := NewSSHWithOpener(Config{}, (&fakeOpener{session: &fakeSession{prompt: "SW-CORE-01"}}).open)
	host, err := exec.Prompt(context.Background(), "h")
	if err != nil || host != "SW-CORE-01" {
		t.Errorf("Prompt() = %q, %v", host, err)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"context deadline", context.DeadlineExceeded, KindTimeout},
		{"wrapped deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), KindTimeout},
		{"expect deadline", status.Error(codes.DeadlineExceeded, "timer expired"), KindTimeout},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, KindTimeout},
		{"auth", errors.New("ssh: unable to authenticate"), KindAuthFailed},
		{"refused", errors.New("dial tcp 10.0.0.1:22: connect: connection refused"), KindTransport},
		{"canceled", context.Canceled, KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMatchesOnlyItsSentinel(t *testing.T) {
	err := wrap("h", "show version", errors.New("connection reset"))
	if !errors.Is(err, ErrTransport) {
		t.Error("expected transport error")
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrAuthFailed) {
		t.Error("transport error should not match other kinds")
	}
	if Reason(err) != "error" {
		t.Errorf("reason = %q", Reason(err))
	}
	if wrap("h", "", nil) != nil {
		t.Error("wrap(nil) should be nil")
	}
}

func TestCancelledContextStopsBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	sess := &fakeSession{}
	exec := NewSSHWithOpener(Config{}, (&fakeOpener{session: sess}).open)
	_, err := exec.ExecuteBatch(ctx, "h", []string{"show version"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if len(sess.ran) != 0 {
		t.Errorf("no command should run after the deadline, ran %v", sess.ran)
	}
}

func TestCleanOutput(t *testing.T) {
	raw := "show version\r\nCisco IOS XE Software\r\nSW1 uptime is 2 days\r\nSW1#"
	got := cleanOutput(raw, "show version")
	want := "Cisco IOS XE Software\nSW1 uptime is 2 days"
	if got != want {
		t.Errorf("cleanOutput() = %q, want %q", got, want)
	}
}

func TestPromptPattern(t *testing.T) {
	tests := []struct {
		line string
		host string
	}{
		{"SW-CORE-01#", "SW-CORE-01"},
		{"access.sw2>", "access.sw2"},
		{"SW1(config)#", "SW1"},
		{"Gi1/0/1 is up", ""},
	}
	for _, tt := range tests {
		m := promptPattern.FindStringSubmatch(tt.line)
		got := ""
		if m != nil {
			got = m[1]
		}
		if got != tt.host {
			t.Errorf("prompt %q -> %q, want %q", tt.line, got, tt.host)
		}
	}
}
