package parser

import (
	"regexp"
	"strconv"
	"strings"

	"go-swmon/internal/portname"
)

type PoE struct {
	Enabled bool
	Watts   float64
}

//	Interface  Admin  Oper       Power   Device              Class  Max
//	Gi1/0/1    auto   on         7.4     Cisco IP Phone      3      30.0
var poeLine = regexp.MustCompile(`^(` + ifacePattern + `)\s+\S+\s+(\S+)\s+([\d.]+)`)

// ParsePoE reads "show power inline". Only an operational state of "on"
// reports power; every other state reports 0 W whatever the power column says.
func ParsePoE(raw string) map[string]PoE {
	result := make(map[string]PoE)
	for _, line := range lines(raw) {
		m := poeLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p := PoE{}
		if strings.EqualFold(m[2], "on") {
			p.Enabled = true
			if w, err := strconv.ParseFloat(m[3], 64); err == nil && w >= 0 {
				p.Watts = w
			}
		}
		result[portname.Short(m[1])] = p
	}
	return result
}
