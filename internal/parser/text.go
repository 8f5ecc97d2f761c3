// Package parser turns the text of IOS "show" commands into typed values.
//
// Every parser is total: malformed, truncated or unexpected input never
// produces an error, it only produces fewer records or zero-valued fields.
// Each accepted line shape is a named package-level expression so it can be
// tested on its own.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// ifacePattern matches an interface token: letters, then a digit, then
// optional slot/port and subinterface parts. Column headers ("Port",
// "Interface") never match because they carry no digit.
const ifacePattern = `[A-Za-z][A-Za-z\-]*\d+(?:/\d+)*(?:\.\d+)?`

var (
	ansiRegex      = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	interfaceRegex = regexp.MustCompile(`^` + ifacePattern + `$`)
)

// IsInterfaceName reports whether s is a single interface token such as
// "Gi1/0/1" or "Po12", safe to append to a command line.
func IsInterfaceName(s string) bool {
	return interfaceRegex.MatchString(s)
}

// StripANSI removes terminal escape sequences some firmware emits even with
// the pager disabled.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// lines splits raw output into lines without escape codes, carriage returns
// or trailing blanks.
func lines(raw string) []string {
	out := strings.Split(StripANSI(raw), "\n")
	for i, l := range out {
		out[i] = strings.TrimRight(l, " \t\r")
	}
	return out
}

// atoi64 parses a non-negative counter. Anything unparsable counts as 0.
func atoi64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
