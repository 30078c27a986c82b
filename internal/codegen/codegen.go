// Package codegen formats and parses the human-readable sequential codes
// issued for companies, drivers, rentals and receipts.
package codegen

import (
	"fmt"
	"regexp"
	"strconv"
)

// Family describes one code series.
type Family struct {
	Name    string
	Prefix  string
	Width   int
	Start   int64
	pattern *regexp.Regexp
}

func newFamily(name, prefix string, width int, start int64) Family {
	return Family{
		Name:    name,
		Prefix:  prefix,
		Width:   width,
		Start:   start,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)$`),
	}
}

var (
	Company = newFamily("company", "COMP-", 3, 1)
	Driver  = newFamily("driver", "DRV-", 3, 1)
	Receipt = newFamily("receipt", "ESSA", 4, 1001)
)

// Rental returns the rental series for a year, e.g. RNT-2026-001.
func Rental(year int) Family {
	return newFamily(fmt.Sprintf("rental:%d", year), fmt.Sprintf("RNT-%d-", year), 3, 1)
}

// Format renders n, zero padded to the family width. Wider numbers are not truncated.
func (f Family) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", f.Prefix, f.Width, n)
}

// Parse extracts the numeric suffix of a code in this family.
func (f Family) Parse(code string) (int64, bool) {
	m := f.pattern.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextNumber is the number that follows lastCode, or the family start when
// lastCode is empty or not in the family.
func (f Family) NextNumber(lastCode string) int64 {
	n, ok := f.Parse(lastCode)
	if !ok || n < f.Start {
		return f.Start
	}
	return n + 1
}

// NextAfter returns the code following lastCode.
func (f Family) NextAfter(lastCode string) string {
	return f.Format(f.NextNumber(lastCode))
}

// SQLPattern is a POSIX regex matching the family, for use with the ~ operator.
func (f Family) SQLPattern() string {
	return f.pattern.String()
}
