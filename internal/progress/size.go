// Package progress parses the line protocols emitted by the external
// downloader and transcoder tools. All parsers are pure: one line in,
// one structured value out, independent of any process state, so they
// can be unit tested without spawning anything.
package progress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sizePattern matches a number followed by an optional unit, e.g.
// "10.5MiB", "700KB", "1024", "~3.2GiB".
var sizePattern = regexp.MustCompile(`(?i)^~?\s*([0-9]+(?:\.[0-9]+)?)\s*(?:([kmgtp])(i)?)?b?\s*$`)

// unitExponent maps the unit letter to its power of the base.
var unitExponent = map[string]int{
	"k": 1,
	"m": 2,
	"g": 3,
	"t": 4,
	"p": 5,
}

// ParseSize converts a human-readable size string into bytes. Binary
// units (KiB, MiB, ...) use a 1024 multiplier, decimal units (KB, MB,
// ...) use 1000. A bare number is taken as bytes.
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("size: empty string")
	}

	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("size: invalid format %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("size: invalid number %q: %w", m[1], err)
	}

	unit := strings.ToLower(m[2])
	if unit == "" {
		return int64(value), nil
	}

	base := 1000.0
	if m[3] != "" {
		base = 1024.0
	}
	mult := 1.0
	for i := 0; i < unitExponent[unit]; i++ {
		mult *= base
	}
	return int64(value * mult), nil
}

// binaryUnits are the suffixes used by FormatSize, in ascending order.
var binaryUnits = []string{"KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatSize renders a byte count with binary units to one decimal,
// matching the downloader's own output style, e.g. 11010048 → "10.5MiB".
func FormatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	v := float64(n)
	for _, unit := range binaryUnits {
		v /= 1024
		if v < 1024 || unit == "PiB" {
			return fmt.Sprintf("%.1f%s", v, unit)
		}
	}
	return fmt.Sprintf("%dB", n)
}
