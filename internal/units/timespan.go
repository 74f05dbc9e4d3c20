// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimespan is returned for text that is not a sequence of
// <integer><unit> terms.
var ErrInvalidTimespan = errors.New("invalid timespan")

// Calendar units are fixed lengths so that spans compare deterministically.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

// timespanUnits is case sensitive: "m" is minutes, "M" is months.
var timespanUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'D': Day,
	'd': Day,
	'W': Week,
	'w': Week,
	'M': Month,
	'Y': Year,
	'y': Year,
}

// ParseTimespan parses backup repeat and retention values such as "1D",
// "2W", "6M", "1D12h" or "90m". A bare integer is a number of seconds.
func ParseTimespan(s string) (time.Duration, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidTimespan)
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n < 0 || n > math.MaxInt64/int64(time.Second) {
			return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimespan, s)
		}
		return time.Duration(n) * time.Second, nil
	}

	var total time.Duration
	for len(text) > 0 {
		i := 0
		for i < len(text) && text[i] >= '0' && text[i] <= '9' {
			i++
		}
		if i == 0 || i == len(text) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimespan, s)
		}

		unit, ok := timespanUnits[text[i]]
		if !ok {
			return 0, fmt.Errorf("%w: unknown unit %q in %q", ErrInvalidTimespan, text[i], s)
		}

		n, err := strconv.ParseInt(text[:i], 10, 64)
		if err != nil || n > int64(math.MaxInt64/unit) {
			return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimespan, s)
		}
		term := time.Duration(n) * unit
		if total > math.MaxInt64-term {
			return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimespan, s)
		}
		total += term
		text = text[i+1:]
	}
	return total, nil
}
