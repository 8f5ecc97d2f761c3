// Package telemetry merges the parsed "show" outputs of one switch into the
// per-port records served to clients.
package telemetry

import (
	"time"

	"go-swmon/internal/models"
	"go-swmon/internal/parser"
	"go-swmon/internal/rules"
)

// The fixed batch of commands polled from every switch.
const (
	CmdStatus  = "show interfaces status"
	CmdDetail  = "show interfaces"
	CmdPoE     = "show power inline"
	CmdVersion = "show version"
)

// Commands returns the poll batch in the order it is sent.
func Commands() []string {
	return []string{CmdStatus, CmdDetail, CmdPoE, CmdVersion}
}

// MacCommand is the on-demand per-port MAC table query.
func MacCommand(portID string) string {
	return "show mac address-table interface " + portID
}

// Outputs maps a command to its raw output.
type Outputs map[string]string

type Assembler struct {
	Speeds rules.Table
	Now    func() time.Time
}

// New returns an Assembler using the given speed table and the wall clock.
func New(speeds rules.Table) Assembler {
	if speeds == nil {
		speeds = rules.Default
	}
	return Assembler{Speeds: speeds, Now: time.Now}
}

// Assemble builds one PortRecord per row of the status table, in row order.
// PortNum is the 1-based row position, not anything parsed from the
// interface name: consumers rely on it matching the physical display order.
// Ports missing from the detail or PoE output get zero counters and PoE off.
// The MAC table is left empty; it is fetched per port on demand.
func (a Assembler) Assemble(status, detail, poe string) []models.PortRecord {
	statusList := parser.ParseInterfaceStatus(status, a.speeds())
	detailMap := parser.ParseInterfaceDetail(detail)
	poeMap := parser.ParsePoE(poe)

	now := a.now().UTC()
	ports := make([]models.PortRecord, 0, len(statusList))
	for i, p := range statusList {
		det := detailMap[p.ID]
		pw := poeMap[p.ID]

		port := models.PortRecord{
			ID:          p.ID,
			PortNum:     i + 1,
			Status:      p.Status,
			Description: p.Description,
			VLAN:        p.VLAN,
			Speed:       p.Speed,
			Duplex:      p.Duplex,
			Mode:        p.Mode,
			PoE:         pw.Enabled,
			PoEWatts:    pw.Watts,
			Errors: models.PortErrors{
				RX:  det.RXErrors,
				TX:  det.TXErrors,
				CRC: det.CRC,
			},
			RXBytes:     det.RXBytes,
			TXBytes:     det.TXBytes,
			RXRate:      det.RXRate,
			TXRate:      det.TXRate,
			MacTable:    []models.MacEntry{},
			LastChanged: now,
			Events:      []models.PortEvent{{Timestamp: now.UnixMilli(), Event: p.Status}},
		}
		if p.Status == models.StatusUp {
			seen := now
			port.LastSeen = &seen
		}
		ports = append(ports, port)
	}
	return ports
}

// SystemInfo extracts hostname and uptime from "show version".
func (a Assembler) SystemInfo(version string) models.SystemInfo {
	return models.SystemInfo{
		Hostname: parser.ParseHostname(version),
		Uptime:   parser.ParseUptime(version),
	}
}

// Build assembles ports and system info from the outputs of Commands().
// Missing outputs are treated as empty text.
func (a Assembler) Build(out Outputs) ([]models.PortRecord, models.SystemInfo) {
	ports := a.Assemble(out[CmdStatus], out[CmdDetail], out[CmdPoE])
	return ports, a.SystemInfo(out[CmdVersion])
}

// Summarize counts ports for the cached reachability status.
func Summarize(ports []models.PortRecord, polled time.Time) models.SwitchStatus {
	st := models.SwitchStatus{
		Reachable:  true,
		LastPolled: polled,
		PortCount:  len(ports),
	}
	for _, p := range ports {
		if p.Status == models.StatusUp {
			st.PortsUp++
		}
	}
	return st
}

func (a Assembler) speeds() rules.Table {
	if a.Speeds == nil {
		return rules.Default
	}
	return a.Speeds
}

func (a Assembler) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
