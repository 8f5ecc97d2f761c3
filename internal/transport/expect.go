package transport

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	expect "github.com/google/goexpect"
	"golang.org/x/crypto/ssh"
)

// promptPattern matches an IOS exec prompt such as "SW-CORE-01#" or "sw1>".
// The first group is the hostname.
var promptPattern = regexp.MustCompile(`(?m)^([\w\-.]+)(?:\([\w\-]+\))?[#>]\s*$`)

const pagerDisable = "terminal length 0"

// expectSession drives an interactive IOS shell over an SSH client.
type expectSession struct {
	client   *ssh.Client
	expecter *expect.GExpect
	timeout  time.Duration
	prompt   string
}

func newExpectSession(client *ssh.Client, timeout time.Duration) (*expectSession, error) {
	exp, _, err := expect.SpawnSSH(client, timeout,
		expect.Verbose(false),
		expect.CheckDuration(100*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("spawn shell: %w", err)
	}

	s := &expectSession{client: client, expecter: exp, timeout: timeout}

	_, match, err := exp.Expect(promptPattern, timeout)
	if err != nil {
		exp.Close()
		return nil, fmt.Errorf("waiting for prompt: %w", err)
	}
	if len(match) > 1 {
		s.prompt = match[1]
	}

	// Paging left on would stall long outputs at "--More--".
	if _, err := s.Run(pagerDisable); err != nil {
		exp.Close()
		return nil, fmt.Errorf("disable paging: %w", err)
	}
	return s, nil
}

func (s *expectSession) Run(command string) (string, error) {
	if err := s.expecter.Send(command + "\n"); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	out, _, err := s.expecter.Expect(promptPattern, s.timeout)
	if err != nil {
		return "", err
	}
	return cleanOutput(out, command), nil
}

func (s *expectSession) Prompt() string { return s.prompt }

func (s *expectSession) Close() error {
	err := s.expecter.Close()
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// cleanOutput drops the echoed command and any prompt lines.
func cleanOutput(out, command string) string {
	out = strings.ReplaceAll(out, "\r", "")
	lines := strings.Split(out, "\n")
	cleaned := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 && strings.Contains(line, strings.TrimSpace(command)) {
			continue
		}
		if promptPattern.MatchString(strings.TrimSpace(line)) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Trim(strings.Join(cleaned, "\n"), "\n")
}
