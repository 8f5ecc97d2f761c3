package parser

import (
	"regexp"
	"strings"
)

const UnknownHostname = "unknown"

var (
	hostnameLine   = regexp.MustCompile(`(?m)^\s*hostname\s+(\S+)`)
	uptimeHostLine = regexp.MustCompile(`(?m)^(\S+) uptime is`)
	uptimeLine     = regexp.MustCompile(`(?i)uptime is (.+)`)
	uptimePair     = regexp.MustCompile(`(?i)(\d+)\s*(year|week|day|hour|minute)`)
)

// Seconds per uptime unit. Years and weeks use fixed calendar lengths.
var uptimeUnits = map[string]int64{
	"year":   365 * 86400,
	"week":   7 * 86400,
	"day":    86400,
	"hour":   3600,
	"minute": 60,
}

// ParseHostname returns the token after a line-leading "hostname" keyword.
// "show version" rarely carries that line, so the token in front of
// "uptime is" is used next. Otherwise the hostname is "unknown".
func ParseHostname(raw string) string {
	raw = StripANSI(raw)
	if m := hostnameLine.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if m := uptimeHostLine.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return UnknownHostname
}

// ParseUptime sums every "<n> <unit>" pair after "uptime is", or in the
// whole input when there is no such line. No pair yields 0.
func ParseUptime(raw string) int64 {
	scope := StripANSI(raw)
	if m := uptimeLine.FindStringSubmatch(scope); m != nil {
		scope = m[1]
	}
	var seconds int64
	for _, m := range uptimePair.FindAllStringSubmatch(scope, -1) {
		unit := uptimeUnits[strings.ToLower(m[2])]
		seconds += atoi64(m[1]) * unit
	}
	return seconds
}
