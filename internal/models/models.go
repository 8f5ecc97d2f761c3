package models

import "time"

// Switch is one row of the switch inventory.
type Switch struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	Name      string `json:"name"`
	Host      string `gorm:"uniqueIndex" json:"host"`
	Location  string `json:"location"`
	Model     string `json:"model"`
	Community string `json:"-"` // SNMP v2c, optional; never rendered
}

const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDisabled = "disabled"

	ModeAccess = "access"
	ModeTrunk  = "trunk"

	SourceCache = "cache"
	SourceLive  = "live"
)

type PortErrors struct {
	RX  int64 `json:"rx"`
	TX  int64 `json:"tx"`
	CRC int64 `json:"crc"`
}

type PortEvent struct {
	Timestamp int64  `json:"timestamp"` // unix millis
	Event     string `json:"event"`
}

type MacEntry struct {
	MAC  string `json:"mac"`
	VLAN int    `json:"vlan"`
	Type string `json:"type"`
	Port string `json:"port,omitempty"`
}

// PortRecord is the merged telemetry for one switch interface.
type PortRecord struct {
	ID          string      `json:"id"`
	PortNum     int         `json:"portNum"`
	Status      string      `json:"status"`
	Description string      `json:"description"`
	VLAN        int         `json:"vlan"`
	Speed       string      `json:"speed"`
	Duplex      string      `json:"duplex"`
	Mode        string      `json:"mode"`
	PoE         bool        `json:"poe"`
	PoEWatts    float64     `json:"poeWatts"`
	Errors      PortErrors  `json:"errors"`
	RXBytes     int64       `json:"rxBytes"`
	TXBytes     int64       `json:"txBytes"`
	RXRate      int64       `json:"rxRate"`
	TXRate      int64       `json:"txRate"`
	MacTable    []MacEntry  `json:"macTable"`
	LastChanged time.Time   `json:"lastChanged"`
	LastSeen    *time.Time  `json:"lastSeen"`
	Events      []PortEvent `json:"events"`
}

type SystemInfo struct {
	Hostname string `json:"hostname"`
	Uptime   int64  `json:"uptime"` // seconds
}

// PortsResult is what a ports query returns, live or from cache.
type PortsResult struct {
	Source   string       `json:"source"`
	CachedAt time.Time    `json:"cachedAt"`
	Ports    []PortRecord `json:"ports"`
	SysInfo  SystemInfo   `json:"sysinfo"`
}

// SwitchStatus is the cached reachability summary of a switch.
type SwitchStatus struct {
	Reachable  bool      `json:"reachable"`
	Reason     string    `json:"reason,omitempty"`
	LastPolled time.Time `json:"lastPolled"`
	PortCount  int       `json:"portCount"`
	PortsUp    int       `json:"portsUp"`
}

// SwitchView joins an inventory row with its cached status, if any.
type SwitchView struct {
	Switch
	Reachable  *bool      `json:"reachable"`
	Reason     string     `json:"reason,omitempty"`
	LastPolled *time.Time `json:"lastPolled"`
	PortCount  *int       `json:"portCount"`
	PortsUp    *int       `json:"portsUp"`
}

type PingResult struct {
	Reachable bool   `json:"reachable"`
	Hostname  string `json:"hostname,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
