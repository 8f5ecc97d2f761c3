package portname

import (
	"regexp"
	"strings"
)

type Rule struct {
	Regex   *regexp.Regexp
	Handler func(match []string) string
}

// Prefixes maps long interface type names to the abbreviations IOS uses in
// tabular output. Matching is on the whole type name, case-insensitively.
var Prefixes = []struct{ Long, Short string }{
	{"TwentyFiveGigE", "Twe"},
	{"TwentyFiveGigabitEthernet", "Twe"},
	{"HundredGigE", "Hu"},
	{"HundredGigabitEthernet", "Hu"},
	{"FortyGigabitEthernet", "Fo"},
	{"TenGigabitEthernet", "Te"},
	{"TwoGigabitEthernet", "Tw"},
	{"FiveGigabitEthernet", "Fi"},
	{"AppGigabitEthernet", "Ap"},
	{"GigabitEthernet", "Gi"},
	{"FastEthernet", "Fa"},
	{"Port-channel", "Po"},
}

var longForm = regexp.MustCompile(`^([A-Za-z][A-Za-z\-]*?)(\d+(?:/\d+)*(?:\.\d+)?)$`)

// Short returns the abbreviated form of an interface name, so that the
// "show interfaces" headers ("GigabitEthernet1/0/1") and the status table
// ("Gi1/0/1") key the same port. Unknown or already short names pass through.
func Short(name string) string {
	name = strings.TrimSpace(name)
	m := longForm.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	for _, p := range Prefixes {
		if strings.EqualFold(m[1], p.Long) {
			return p.Short + m[2]
		}
	}
	return name
}

var Rules = []Rule{
	// Cisco-style 3-level: "Gi1/0/48" or "GigabitEthernet1/0/48" → "48"
	{
		regexp.MustCompile(`^[A-Za-z\-]+\d+/\d+/(\d+)$`),
		func(m []string) string { return m[1] },
	},
	// Cisco-style 2-level: "Gi0/9" → "9"
	{
		regexp.MustCompile(`^[A-Za-z\-]+\d+/(\d+)$`),
		func(m []string) string { return m[1] },
	},
	// Port-channel: "Po1" → "po1"
	{
		regexp.MustCompile(`^(?i:Po|Port-channel)(\d+)$`),
		func(m []string) string { return "po" + m[1] },
	},
}

// Label extracts a short, consistent label for display on port boxes.
func Label(name string) string {
	for _, rule := range Rules {
		if match := rule.Regex.FindStringSubmatch(name); len(match) > 1 {
			return rule.Handler(match)
		}
	}
	return name
}
