// Package rules holds the speed normalisation table applied to the speed
// column of "show interfaces status". The built-in table covers IOS and
// IOS-XE formatting; sites with other firmware can prepend rules from a TOML
// file instead of patching the parser.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// SpeedRule maps any token matching Regex to Value.
type SpeedRule struct {
	Regex *regexp.Regexp
	Value string
}

// Table is an ordered list of speed rules. The first match wins.
type Table []SpeedRule

// autoMarker prefixes auto-negotiated values, e.g. "a-100", "a-1000".
const autoMarker = "a-"

// Default is the built-in table. Numeric forms are anchored so a longer
// figure such as "100000" never lands on a shorter rule.
var Default = Table{
	{regexp.MustCompile(`(?i)^(100000$|100g)`), "100000"},
	{regexp.MustCompile(`(?i)^(10000$|10g)`), "10000"},
	{regexp.MustCompile(`(?i)^(1000$|1g)`), "1000"},
	{regexp.MustCompile(`(?i)^100(m|mb)?$`), "100"},
}

// Normalize strips the auto-negotiation marker and maps the token through
// the table. Tokens no rule recognises are returned cleaned but otherwise
// verbatim.
func (t Table) Normalize(token string) string {
	cleaned := strings.TrimPrefix(strings.TrimSpace(token), autoMarker)
	for _, r := range t {
		if r.Regex.MatchString(cleaned) {
			return r.Value
		}
	}
	return cleaned
}

type fileRule struct {
	Pattern string `toml:"pattern"`
	Value   string `toml:"value"`
}

type file struct {
	Speed []fileRule `toml:"speed"`
}

// Load reads extra speed rules from a TOML file and returns them placed ahead
// of the default table. A missing file yields the default table.
//
//	[[speed]]
//	pattern = "(?i)^25g"
//	value   = "25000"
func Load(path string) (Table, error) {
	if path == "" {
		return Default, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default, nil
		}
		return nil, err
	}

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse speed rules: %w", err)
	}

	table := make(Table, 0, len(f.Speed)+len(Default))
	for i, r := range f.Speed {
		if r.Pattern == "" || r.Value == "" {
			return nil, fmt.Errorf("speed rule %d: pattern and value are required", i)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("speed rule %d: %w", i, err)
		}
		table = append(table, SpeedRule{Regex: re, Value: r.Value})
	}
	return append(table, Default...), nil
}
