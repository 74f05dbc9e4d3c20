// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"strconv"
	"time"

	"github.com/tomtom215/safehold/internal/models"
)

// Child rows of a backup. They have no identity and are replaced as a set.
type sourceRow struct {
	BackupID int64
	Path     string
}

type settingRow struct {
	BackupID int64
	Filter   string
	Name     string
	Value    string
}

type filterRow struct {
	BackupID   int64
	Order      int64
	Include    bool
	Expression string
}

type metadataRow struct {
	BackupID int64
	Name     string
	Value    string
}

// backupRow is the scalar part of models.Backup. The string ID of the model
// becomes an integer identity here.
type backupRow struct {
	ID          int64
	Name        string
	Description string
	Tags        []string
	TargetURL   string
	DBPath      string
}

func toBackupRow(b *models.Backup, id int64) *backupRow {
	return &backupRow{
		ID:          id,
		Name:        b.Name,
		Description: b.Description,
		Tags:        b.Tags,
		TargetURL:   b.TargetURL,
		DBPath:      b.DBPath,
	}
}

func (r *backupRow) model() *models.Backup {
	return &models.Backup{
		ID:          strconv.FormatInt(r.ID, 10),
		Name:        r.Name,
		Description: r.Description,
		Tags:        r.Tags,
		TargetURL:   r.TargetURL,
		DBPath:      r.DBPath,
	}
}

var backupsTable = NewTable("backups",
	NewIdentity("id", func(r *backupRow) int64 { return r.ID }, func(r *backupRow, id int64) { r.ID = id }),
	StringColumn("name", func(r *backupRow) *string { return &r.Name }),
	StringColumn("description", func(r *backupRow) *string { return &r.Description }),
	TagsColumn("tags", func(r *backupRow) *[]string { return &r.Tags }),
	StringColumn("target_url", func(r *backupRow) *string { return &r.TargetURL }),
	StringColumn("db_path", func(r *backupRow) *string { return &r.DBPath }),
)

var schedulesTable = NewTable("schedules",
	NewIdentity("id", func(s *models.Schedule) int64 { return s.ID }, func(s *models.Schedule, id int64) { s.ID = id }),
	TagsColumn("tags", func(s *models.Schedule) *[]string { return &s.Tags }),
	TimeColumn("next_time", func(s *models.Schedule) *time.Time { return &s.Time }),
	StringColumn("repeat_interval", func(s *models.Schedule) *string { return &s.Repeat }),
	TimeColumn("last_run", func(s *models.Schedule) *time.Time { return &s.LastRun }),
	StringColumn("rule", func(s *models.Schedule) *string { return &s.Rule }),
)

var sourcesTable = NewTable[sourceRow]("sources", nil,
	IntColumn("backup_id", func(r *sourceRow) *int64 { return &r.BackupID }),
	StringColumn("path", func(r *sourceRow) *string { return &r.Path }),
)

var settingsTable = NewTable[settingRow]("settings", nil,
	IntColumn("backup_id", func(r *settingRow) *int64 { return &r.BackupID }),
	StringColumn("filter_expr", func(r *settingRow) *string { return &r.Filter }),
	StringColumn("name", func(r *settingRow) *string { return &r.Name }),
	StringColumn("value", func(r *settingRow) *string { return &r.Value }),
)

var filtersTable = NewTable[filterRow]("filters", nil,
	IntColumn("backup_id", func(r *filterRow) *int64 { return &r.BackupID }),
	IntColumn("sort_order", func(r *filterRow) *int64 { return &r.Order }),
	BoolColumn("is_include", func(r *filterRow) *bool { return &r.Include }),
	StringColumn("expression", func(r *filterRow) *string { return &r.Expression }),
)

var metadataTable = NewTable[metadataRow]("metadata", nil,
	IntColumn("backup_id", func(r *metadataRow) *int64 { return &r.BackupID }),
	StringColumn("name", func(r *metadataRow) *string { return &r.Name }),
	StringColumn("value", func(r *metadataRow) *string { return &r.Value }),
)

var notificationsTable = NewTable("notifications",
	NewIdentity("id", func(n *models.Notification) int64 { return n.ID }, func(n *models.Notification, id int64) { n.ID = id }),
	EnumColumn("notification_type", models.NotificationTypeNames, func(n *models.Notification) *models.NotificationType { return &n.Type }),
	StringColumn("title", func(n *models.Notification) *string { return &n.Title }),
	StringColumn("message", func(n *models.Notification) *string { return &n.Message }),
	NullStringColumn("exception_text", func(n *models.Notification) **string { return &n.Exception }),
	NullStringColumn("backup_id", func(n *models.Notification) **string { return &n.BackupID }),
	StringColumn("action", func(n *models.Notification) *string { return &n.Action }),
	TimeColumn("occurred_at", func(n *models.Notification) *time.Time { return &n.Timestamp }),
	StringColumn("log_entry_id", func(n *models.Notification) *string { return &n.LogEntryID }),
	StringColumn("message_id", func(n *models.Notification) *string { return &n.MessageID }),
	StringColumn("log_tag", func(n *models.Notification) *string { return &n.MessageLogTag }),
)

var tempFilesTable = NewTable("temp_files",
	NewIdentity("id", func(f *models.TempFile) int64 { return f.ID }, func(f *models.TempFile, id int64) { f.ID = id }),
	TimeColumn("created_at", func(f *models.TempFile) *time.Time { return &f.Timestamp }),
	StringColumn("origin", func(f *models.TempFile) *string { return &f.Origin }),
	StringColumn("path", func(f *models.TempFile) *string { return &f.Path }),
	TimeColumn("expires_at", func(f *models.TempFile) *time.Time { return &f.Expires }),
)

// tables is the set of descriptors a Store reads with. Only tables carrying
// enumerations differ between strict and lenient mode.
type tables struct {
	notifications *Table[models.Notification]
}

func newTables(lenient bool) tables {
	if lenient {
		return tables{notifications: notificationsTable.Lenient()}
	}
	return tables{notifications: notificationsTable}
}
