// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

// Package logging provides the process-wide zerolog logger for Safehold.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("driver", "sqlite").Msg("Store opened")
//	logging.Err(err).Msg("Backup delete failed")
//
//	// Correlated operations
//	ctx = logging.WithCorrelationID(ctx, logging.NewCorrelationID())
//	logging.Ctx(ctx).Debug().Msg("Transaction started")
//
// # slog Bridge
//
// NewSlogLogger exposes the same stream as a *slog.Logger, which the
// supervisor tree hands to sutureslog for service lifecycle events.
//
// Always terminate event chains with Msg or Send; an unterminated chain
// emits nothing.
package logging
