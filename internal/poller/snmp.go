package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-swmon/internal/models"

	"github.com/gosnmp/gosnmp"
)

const (
	oidSysName   = "1.3.6.1.2.1.1.5.0"
	oidSysUpTime = "1.3.6.1.2.1.1.3.0"
)

// SNMP reads sysName and sysUpTime with SNMP v2c.
type SNMP struct {
	Port    uint16
	Timeout time.Duration
}

func (p SNMP) SystemInfo(ctx context.Context, host, community string) (models.SystemInfo, error) {
	port := p.Port
	if port == 0 {
		port = 161
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = gosnmp.Default.Timeout
	}

	g := &gosnmp.GoSNMP{
		Target:    host,
		Port:      port,
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   timeout,
		Retries:   1,
		Context:   ctx,
	}
	if err := g.Connect(); err != nil {
		return models.SystemInfo{}, fmt.Errorf("connect error: %v", err)
	}
	defer g.Conn.Close()

	pkt, err := g.Get([]string{oidSysName, oidSysUpTime})
	if err != nil {
		return models.SystemInfo{}, fmt.Errorf("SNMP get error: %v", err)
	}
	return systemInfoFromPDUs(pkt.Variables), nil
}

// systemInfoFromPDUs maps sysName and sysUpTime (hundredths of a second).
func systemInfoFromPDUs(pdus []gosnmp.SnmpPDU) models.SystemInfo {
	var info models.SystemInfo
	for _, pdu := range pdus {
		switch strings.TrimPrefix(pdu.Name, ".") {
		case oidSysName:
			if b, ok := pdu.Value.([]byte); ok {
				info.Hostname = strings.TrimSpace(string(b))
			}
		case oidSysUpTime:
			if pdu.Value != nil {
				info.Uptime = gosnmp.ToBigInt(pdu.Value).Int64() / 100
			}
		}
	}
	return info
}
