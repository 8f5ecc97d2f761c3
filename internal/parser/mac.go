package parser

import (
	"regexp"
	"strconv"
	"strings"

	"go-swmon/internal/models"
	"go-swmon/internal/portname"
)

//	Vlan    Mac Address       Type        Ports
//	  10    aabb.cc11.2233    DYNAMIC     Gi1/0/1
var macLine = regexp.MustCompile(`^\s*(\d+)\s+([0-9A-Fa-f]{4}\.[0-9A-Fa-f]{4}\.[0-9A-Fa-f]{4})\s+(\S+)\s+(\S+)`)

// ParseMacTable reads "show mac address-table". Rows without a numeric VLAN
// (e.g. the "All" CPU entries) are skipped.
func ParseMacTable(raw string) []models.MacEntry {
	entries := []models.MacEntry{}
	for _, line := range lines(raw) {
		m := macLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		vlan, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, models.MacEntry{
			MAC:  FormatMAC(m[2]),
			VLAN: vlan,
			Type: strings.ToLower(m[3]),
			Port: portname.Short(m[4]),
		})
	}
	return entries
}

// FormatMAC rewrites Cisco dotted notation (aabb.cc11.2233) as colon
// separated octets (aa:bb:cc:11:22:33). Input that is not 12 hex digits is
// returned lowercased but otherwise untouched.
func FormatMAC(dotted string) string {
	hex := strings.ToLower(strings.ReplaceAll(dotted, ".", ""))
	if len(hex) != 12 {
		return strings.ToLower(dotted)
	}
	octets := make([]string, 0, 6)
	for i := 0; i < 12; i += 2 {
		octets = append(octets, hex[i:i+2])
	}
	return strings.Join(octets, ":")
}
