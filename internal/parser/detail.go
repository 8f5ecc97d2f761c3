package parser

import (
	"regexp"
	"strings"

	"go-swmon/internal/models"
	"go-swmon/internal/portname"
)

// Detail holds the counters scraped from one "show interfaces" block.
type Detail struct {
	AdminStatus string
	RXErrors    int64
	TXErrors    int64
	CRC         int64
	RXBytes     int64
	TXBytes     int64
	RXRate      int64 // kbps
	TXRate      int64 // kbps
}

var (
	// GigabitEthernet1/0/1 is up, line protocol is up (connected)
	detailHeader = regexp.MustCompile(`^(` + ifacePattern + `) is (\S[^,]*)`)

	rxBytesProbe  = regexp.MustCompile(`(\d+) packets input.*?(\d+) bytes`)
	txBytesProbe  = regexp.MustCompile(`(\d+) packets output.*?(\d+) bytes`)
	rxRateProbe   = regexp.MustCompile(`(?i)input rate (\d+) (bits|kbits|kbit)/sec`)
	txRateProbe   = regexp.MustCompile(`(?i)output rate (\d+) (bits|kbits|kbit)/sec`)
	rxErrorsProbe = regexp.MustCompile(`(\d+) input errors`)
	txErrorsProbe = regexp.MustCompile(`(\d+) output errors`)
	crcProbe      = regexp.MustCompile(`(\d+) CRC`)
)

// ParseInterfaceDetail walks the full "show interfaces" output once. Each
// "<iface> is <state>" header opens a new block with zeroed counters and
// every following line is attributed to it until the next header. Text
// before the first header is ignored.
func ParseInterfaceDetail(raw string) map[string]Detail {
	result := make(map[string]Detail)
	var (
		current string
		d       Detail
		open    bool
	)
	flush := func() {
		if open {
			result[current] = d
		}
	}

	for _, line := range lines(raw) {
		if m := detailHeader.FindStringSubmatch(line); m != nil {
			flush()
			current = portname.Short(m[1])
			d = Detail{AdminStatus: adminStatus(m[2])}
			open = true
			continue
		}
		if !open {
			continue
		}
		probeDetailLine(line, &d)
	}
	flush()
	return result
}

// probeDetailLine runs every counter probe against a line. Probes are
// independent: one line may carry several counters.
func probeDetailLine(line string, d *Detail) {
	if m := rxBytesProbe.FindStringSubmatch(line); m != nil {
		d.RXBytes = atoi64(m[2])
	}
	if m := txBytesProbe.FindStringSubmatch(line); m != nil {
		d.TXBytes = atoi64(m[2])
	}
	if m := rxRateProbe.FindStringSubmatch(line); m != nil {
		d.RXRate = toKbps(m[1], m[2])
	}
	if m := txRateProbe.FindStringSubmatch(line); m != nil {
		d.TXRate = toKbps(m[1], m[2])
	}
	if m := rxErrorsProbe.FindStringSubmatch(line); m != nil {
		d.RXErrors = atoi64(m[1])
	}
	if m := txErrorsProbe.FindStringSubmatch(line); m != nil {
		d.TXErrors = atoi64(m[1])
	}
	if m := crcProbe.FindStringSubmatch(line); m != nil {
		d.CRC = atoi64(m[1])
	}
}

func toKbps(value, unit string) int64 {
	n := atoi64(value)
	if strings.EqualFold(unit, "bits") {
		return n / 1000
	}
	return n
}

func adminStatus(state string) string {
	if strings.Contains(state, "up") {
		return models.StatusUp
	}
	return models.StatusDown
}
