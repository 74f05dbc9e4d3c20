// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/safehold/internal/models"
	"github.com/tomtom215/safehold/internal/units"
	"github.com/tomtom215/safehold/internal/validation"
)

// MinRetention is the shortest accepted keep-time and schedule repeat.
const MinRetention = 5 * time.Minute

// Option names understood by validation, without the leading "--".
const (
	OptionPassphrase           = "passphrase"
	OptionNoEncryption         = "no-encryption"
	OptionAsymmetricEncryption = "asymmetric-encryption"
	OptionKeepVersions         = "keep-versions"
	OptionKeepTime             = "keep-time"
	OptionDblockSize           = "dblock-size"
	OptionBlocksize            = "blocksize"
	OptionPrefix               = "prefix"
)

// ValidateBackup checks b and its optional schedule and returns the first
// failing rule as a *ValidationError, or nil.
func ValidateBackup(b *models.Backup, sched *models.Schedule) error {
	if errs := validation.ValidateStruct(b); errs != nil {
		f := errs.Fields[0]
		return &ValidationError{Field: f.Field, Reason: f.Message}
	}

	if err := validateEncryption(b); err != nil {
		return err
	}

	if err := validateFilters(b.Filters); err != nil {
		return err
	}

	if v, ok := b.Setting(OptionKeepVersions); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || n <= 0 {
			return invalid(OptionKeepVersions, "keep-versions must be a positive integer, got %q", v)
		}
	}

	if v, ok := b.Setting(OptionKeepTime); ok {
		d, err := units.ParseTimespan(v)
		if err != nil {
			return invalid(OptionKeepTime, "keep-time %q is not a valid time span", v)
		}
		if d <= MinRetention {
			return invalid(OptionKeepTime, "keep-time must be longer than %s, got %q", MinRetention, v)
		}
	}

	if v, ok := b.Setting(OptionDblockSize); ok {
		n, err := units.ParseSize(v)
		if err != nil {
			return invalid(OptionDblockSize, "dblock-size %q is not a valid size", v)
		}
		if n < units.MiB {
			return invalid(OptionDblockSize, "dblock-size must be at least %s, got %q", units.FormatSize(units.MiB), v)
		}
	}

	if v, ok := b.Setting(OptionBlocksize); ok {
		n, err := units.ParseSize(v)
		if err != nil {
			return invalid(OptionBlocksize, "blocksize %q is not a valid size", v)
		}
		if n < units.KiB || n > math.MaxInt32 {
			return invalid(OptionBlocksize, "blocksize must be between %s and %s, got %q",
				units.FormatSize(units.KiB), units.FormatSize(math.MaxInt32), v)
		}
	}

	if v, ok := b.Setting(OptionPrefix); ok && strings.Contains(v, "-") {
		return invalid(OptionPrefix, "prefix must not contain a hyphen, got %q", v)
	}

	if err := checkPlaceholder(b.TargetURL, b.Settings); err != nil {
		return err
	}

	if sched != nil {
		return validateSchedule(sched)
	}
	return nil
}

func validateEncryption(b *models.Backup) error {
	if v, ok := b.Setting(OptionPassphrase); ok && v != "" {
		return nil
	}
	if v, ok := b.Setting(OptionNoEncryption); ok && truthy(v) {
		return nil
	}
	if v, ok := b.Setting(OptionAsymmetricEncryption); ok && truthy(v) {
		return nil
	}
	return invalid(OptionPassphrase, "a passphrase is required unless encryption is disabled or asymmetric encryption is enabled")
}

// checkPlaceholder rejects the masked-credential placeholder anywhere a
// live secret would be written.
func checkPlaceholder(targetURL string, settings []models.Setting) error {
	if strings.Contains(targetURL, models.PlaceholderCredential) {
		return &ValidationError{
			Field:  "targetUrl",
			Reason: "target URL contains the credential placeholder",
			cause:  ErrPlaceholderCredential,
		}
	}
	for _, s := range settings {
		if s.Value == models.PlaceholderCredential {
			return &ValidationError{
				Field:  s.Name,
				Reason: fmt.Sprintf("setting %s holds the credential placeholder", s.Name),
				cause:  ErrPlaceholderCredential,
			}
		}
	}
	return nil
}

// validateFilters rejects two filters with the same order, which would
// make evaluation order undefined.
func validateFilters(filters []models.Filter) error {
	seen := make(map[int64]string, len(filters))
	for _, f := range filters {
		if prev, ok := seen[f.Order]; ok {
			return invalid("filters", "filters %q and %q share order %d", prev, f.Expression, f.Order)
		}
		seen[f.Order] = f.Expression
	}
	return nil
}

// validateSchedule checks the field rules and the repeat interval.
func validateSchedule(sched *models.Schedule) error {
	if errs := validation.ValidateStruct(sched); errs != nil {
		f := errs.Fields[0]
		return &ValidationError{Field: f.Field, Reason: f.Message}
	}
	return validateRepeat(sched.Repeat)
}

func validateRepeat(repeat string) error {
	d, err := units.ParseTimespan(repeat)
	if err != nil {
		return invalid("repeat", "schedule repeat %q is not a valid time span", repeat)
	}
	if d <= MinRetention {
		return invalid("repeat", "schedule repeat must be longer than %s, got %q", MinRetention, repeat)
	}
	return nil
}

// truthy treats a present option with no value as enabled.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "true", "1", "on", "yes":
		return true
	}
	return false
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
