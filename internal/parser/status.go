package parser

import (
	"regexp"
	"strconv"
	"strings"

	"go-swmon/internal/models"
	"go-swmon/internal/portname"
	"go-swmon/internal/rules"
)

// StatusEntry is one row of "show interfaces status".
type StatusEntry struct {
	ID          string
	Description string
	Status      string // up, down or disabled
	RawStatus   string
	VLAN        int
	RawVLAN     string
	Mode        string
	Duplex      string
	Speed       string
	Type        string
}

//	Port      Name               Status       Vlan       Duplex  Speed Type
//	Gi1/0/1   Workstation-01     connected    10         a-full  a-100 10/100/1000BaseTX
//	Gi1/0/2                      notconnect   1          auto    auto  10/100/1000BaseTX
var (
	// statusNamedLine: the name column is separated from the status by two
	// or more spaces so that single-spaced names stay in one field.
	statusNamedLine = regexp.MustCompile(`^(` + ifacePattern + `)\s+(\S.*?)\s{2,}(\S+)\s+(\S+)\s+(\S+)\s+(\S+)(?:\s+(\S.*))?$`)
	statusBareLine  = regexp.MustCompile(`^(` + ifacePattern + `)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)(?:\s+(\S.*))?$`)
)

// knownStatuses are the status-column words printed by IOS, IOS-XE and
// NX-OS. They only decide between the named and bare line shapes; an
// unknown word is still accepted and normalised to down.
var knownStatuses = map[string]bool{
	"connected":    true,
	"notconnect":   true,
	"notconnec":    true,
	"disabled":     true,
	"err-disabled": true,
	"err-disable":  true,
	"sfpabsent":    true,
	"xcvrabsent":   true,
	"xcvrabsen":    true,
	"inactive":     true,
	"monitoring":   true,
	"suspended":    true,
	"suspnd":       true,
	"faulty":       true,
	"notpresent":   true,
	"nooperm":      true,
	"noopermem":    true,
	"up":           true,
	"down":         true,
}

// ParseInterfaceStatus extracts one StatusEntry per interface row, in the
// order the rows appear. Rows that fit neither line shape are skipped.
func ParseInterfaceStatus(raw string, speeds rules.Table) []StatusEntry {
	var entries []StatusEntry
	seen := make(map[string]bool)
	for _, line := range lines(raw) {
		f, ok := matchStatusLine(line)
		if !ok {
			continue
		}
		id := portname.Short(f.iface)
		if seen[id] {
			continue
		}
		seen[id] = true

		vlan, mode := NormalizeVLAN(f.vlan)
		entries = append(entries, StatusEntry{
			ID:          id,
			Description: strings.TrimSpace(f.name),
			Status:      NormalizeStatus(f.status),
			RawStatus:   f.status,
			VLAN:        vlan,
			RawVLAN:     f.vlan,
			Mode:        mode,
			Duplex:      f.duplex,
			Speed:       speeds.Normalize(f.speed),
			Type:        f.itype,
		})
	}
	return entries
}

type statusFields struct {
	iface, name, status, vlan, duplex, speed, itype string
}

func matchStatusLine(line string) (statusFields, bool) {
	var named, bare *statusFields
	if m := statusNamedLine.FindStringSubmatch(line); m != nil {
		named = &statusFields{m[1], m[2], m[3], m[4], m[5], m[6], m[7]}
	}
	if m := statusBareLine.FindStringSubmatch(line); m != nil {
		bare = &statusFields{m[1], "", m[2], m[3], m[4], m[5], m[6]}
	}

	switch {
	case named != nil && knownStatuses[strings.ToLower(named.status)]:
		return *named, true
	case bare != nil && knownStatuses[strings.ToLower(bare.status)]:
		return *bare, true
	case named != nil:
		return *named, true
	case bare != nil:
		return *bare, true
	}
	return statusFields{}, false
}

// NormalizeStatus maps the status column to up, disabled or down.
func NormalizeStatus(token string) string {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "connected":
		return models.StatusUp
	case "disabled", "err-disabled":
		return models.StatusDisabled
	default:
		return models.StatusDown
	}
}

// NormalizeVLAN returns the access VLAN and port mode for a VLAN column
// token. Non-numeric tokens yield VLAN 1; "trunk" and "routed" set trunk mode.
func NormalizeVLAN(token string) (int, string) {
	token = strings.TrimSpace(token)
	mode := models.ModeAccess
	switch strings.ToLower(token) {
	case "trunk", "routed":
		mode = models.ModeTrunk
	}
	vlan, err := strconv.Atoi(token)
	if err != nil || vlan < 1 {
		vlan = 1
	}
	return vlan, mode
}
