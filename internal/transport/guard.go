package transport

import "strings"

var readOnlyPrefixes = []string{"show", "terminal", "sh "}

// CheckReadOnly refuses anything that is not a single show or terminal
// command. It is applied to every command before a session is opened.
func CheckReadOnly(cmd string) error {
	if strings.ContainsAny(cmd, "\r\n") {
		return &Error{Kind: KindCommandRejected, Command: cmd}
	}
	c := strings.ToLower(strings.TrimSpace(cmd))
	for _, p := range readOnlyPrefixes {
		if strings.HasPrefix(c, p) {
			return nil
		}
	}
	return &Error{Kind: KindCommandRejected, Command: cmd}
}
