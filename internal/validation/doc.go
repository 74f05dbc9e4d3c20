// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

// Package validation wraps go-playground/validator v10 with a shared
// instance and readable messages.
//
//	type Job struct {
//	    Name    string   `json:"name" validate:"notblank"`
//	    Sources []string `json:"sources" validate:"min=1,dive,notblank"`
//	}
//
//	if err := validation.ValidateStruct(&job); err != nil {
//	    return err.First() // "name must not be blank"
//	}
//
// Custom rules:
//   - notblank: string is non-empty after trimming whitespace
package validation
