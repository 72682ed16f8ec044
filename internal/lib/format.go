package lib

import (
	humanize "github.com/dustin/go-humanize"
)

// FormatHashes renders a hash rate with an SI prefix, e.g. "12.5 Mh"
func FormatHashes(hr float64) string {
	return humanize.SIWithDigits(hr, 2, "h")
}
