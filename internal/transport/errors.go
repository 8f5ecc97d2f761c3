package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind is a normalized failure class for switch access.
type Kind string

const (
	KindCommandRejected Kind = "COMMAND_REJECTED"
	KindAuthFailed      Kind = "AUTH_FAILED"
	KindTimeout         Kind = "TIMEOUT"
	KindTransport       Kind = "TRANSPORT"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrCommandRejected = errors.New("command rejected")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrTimeout         = errors.New("timed out")
	ErrTransport       = errors.New("transport error")
)

var sentinels = map[Kind]error{
	KindCommandRejected: ErrCommandRejected,
	KindAuthFailed:      ErrAuthFailed,
	KindTimeout:         ErrTimeout,
	KindTransport:       ErrTransport,
}

// Error describes a failed switch interaction.
type Error struct {
	Kind    Kind
	Host    string
	Command string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(sentinels[e.Kind].Error())
	if e.Host != "" {
		fmt.Fprintf(&b, " on %s", e.Host)
	}
	if e.Command != "" {
		fmt.Fprintf(&b, " (%q)", e.Command)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == sentinels[e.Kind]
}

// KindOf returns the Kind of err, or "" when err is not a switch error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Reason is the short code reported for an unreachable switch.
func Reason(err error) string {
	switch KindOf(err) {
	case KindAuthFailed:
		return "auth_failed"
	case KindTimeout:
		return "timeout"
	default:
		return "error"
	}
}

func wrap(host, command string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: classify(err), Host: host, Command: command, Err: err}
}

// classify maps low-level SSH, socket and expect errors to a Kind.
// goexpect reports a missed prompt as a gRPC DeadlineExceeded status.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if status.Code(err) == codes.DeadlineExceeded {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "authentication failed") {
		return KindAuthFailed
	}
	return KindTransport
}
