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

	"github.com/dustin/go-humanize"
)

// Binary size multiples. Backup option values such as "50mb" are always
// interpreted as powers of 1024.
const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
	TiB int64 = 1 << 40
	PiB int64 = 1 << 50
)

// ErrInvalidSize is returned for text that is not <number>[unit].
var ErrInvalidSize = errors.New("invalid size")

var sizeSuffixes = []struct {
	suffix string
	mult   int64
}{
	// longest first so "kib" wins over "b"
	{"kib", KiB}, {"mib", MiB}, {"gib", GiB}, {"tib", TiB}, {"pib", PiB},
	{"kb", KiB}, {"mb", MiB}, {"gb", GiB}, {"tb", TiB}, {"pb", PiB},
	{"k", KiB}, {"m", MiB}, {"g", GiB}, {"t", TiB}, {"p", PiB},
	{"b", 1},
}

// ParseSize parses a byte size such as "100kb", "1.5 GB" or "4096".
// A bare number is a byte count.
func ParseSize(s string) (int64, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidSize)
	}

	mult := int64(1)
	for _, sfx := range sizeSuffixes {
		if strings.HasSuffix(text, sfx.suffix) {
			mult = sfx.mult
			text = strings.TrimSpace(strings.TrimSuffix(text, sfx.suffix))
			break
		}
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: %q is negative", ErrInvalidSize, s)
		}
		if n > math.MaxInt64/mult {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSize, s)
		}
		return n * mult, nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	v := f * float64(mult)
	if v >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSize, s)
	}
	return int64(v), nil
}

// FormatSize renders n with IEC units for error messages, e.g. "1.0 MiB".
func FormatSize(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
