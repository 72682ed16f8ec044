package farm

import (
	"fmt"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"gitlab.com/TitanInd/hashfarm/internal/hashrate"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
)

type SolutionAccount struct {
	Accepted    uint      `json:"accepted"`
	Rejected    uint      `json:"rejected"`
	Wasted      uint      `json:"wasted"`
	Failed      uint      `json:"failed"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (a *SolutionAccount) account(o mining.SolutionOutcome, now time.Time) {
	switch o {
	case mining.Accepted:
		a.Accepted++
	case mining.Rejected:
		a.Rejected++
	case mining.Wasted:
		a.Wasted++
	case mining.Failed:
		a.Failed++
	}
	a.LastUpdated = now
}

func (a SolutionAccount) Total() uint {
	return a.Accepted + a.Rejected + a.Wasted + a.Failed
}

// String renders e.g. "A12:R1", zero counters other than accepted are omitted
func (a SolutionAccount) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A%d", a.Accepted)
	if a.Wasted > 0 {
		fmt.Fprintf(&sb, ":W%d", a.Wasted)
	}
	if a.Rejected > 0 {
		fmt.Fprintf(&sb, ":R%d", a.Rejected)
	}
	if a.Failed > 0 {
		fmt.Fprintf(&sb, ":F%d", a.Failed)
	}
	return sb.String()
}

type TelemetryAccount struct {
	Prefix       string          `json:"prefix"`
	Hashrate     float64         `json:"hashrate"`
	Paused       bool            `json:"paused"`
	PauseReasons string          `json:"pauseReasons,omitempty"`
	Sensors      hwmon.Sensors   `json:"sensors"`
	Solutions    SolutionAccount `json:"solutions"`

	// derived from the difficulty of verified solutions
	EffectiveHashrate     float64 `json:"effectiveHashrate"`
	EffectiveHashrateLong float64 `json:"effectiveHashrateLong"`
	VerifiedHashes        float64 `json:"verifiedHashes"`
	VerifiedSolutions     uint64  `json:"verifiedSolutions"`
}

func (a *TelemetryAccount) setEffective(e *hashrate.Effective) {
	a.EffectiveHashrate = e.ShortHashrate()
	a.EffectiveHashrateLong = e.LongHashrate()
	a.VerifiedHashes = e.TotalHashes()
	a.VerifiedSolutions = e.Solutions()
}

// Telemetry is a point in time copy of the farm state
type Telemetry struct {
	HwMon  bool               `json:"hwmon"`
	Start  time.Time          `json:"start"`
	Farm   TelemetryAccount   `json:"farm"`
	Miners []TelemetryAccount `json:"miners"`
}

func (t Telemetry) clone() Telemetry {
	c := t
	c.Miners = append([]TelemetryAccount(nil), t.Miners...)
	return c
}

func (t Telemetry) Uptime() time.Duration {
	if t.Start.IsZero() {
		return 0
	}
	return time.Since(t.Start)
}

// UptimeString is the uptime in words, e.g. "2 hours 5 minutes"
func (t Telemetry) UptimeString() string {
	return durafmt.Parse(t.Uptime().Truncate(time.Second)).LimitFirstN(2).String()
}

// String renders the periodic status line, e.g. "0:05 A3:R1 12.50 Mh - cp0 6.25 45C 30%, cp1 6.25 47C 30%".
// Device rates are scaled to the magnitude of the farm rate
func (t Telemetry) String() string {
	up := t.Uptime()
	hours := int(up.Hours())
	minutes := int(up.Minutes()) % 60

	rate, prefix := humanize.ComputeSI(t.Farm.Hashrate)
	scale := 1.0
	if rate != 0 {
		scale = t.Farm.Hashrate / rate
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:%02d %s %.2f %sh - ", hours, minutes, t.Farm.Solutions, rate, prefix)
	for i, m := range t.Miners {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s%d %.2f", m.Prefix, i, m.Hashrate/scale)
		if t.HwMon {
			sb.WriteString(" ")
			sb.WriteString(m.Sensors.String())
		}
	}
	return sb.String()
}
