// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package history keeps a record of build runs in a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Run is one recorded pipeline execution
type Run struct {
	StartedAt time.Time     `json:"started_at"`
	Host      string        `json:"host,omitempty"`
	Reason    string        `json:"reason"`
	SDRMode   string        `json:"sdr_mode"`
	SDRDriver string        `json:"sdr_driver"`
	Feeds     string        `json:"feeds"`
	Services  []string      `json:"services"`
	ID        int64         `json:"id"`
	FeedCount int           `json:"feed_count"`
	Warnings  int           `json:"warnings"`
	Duration  time.Duration `json:"duration"`
	Repaired  bool          `json:"repaired"`
	DryRun    bool          `json:"dry_run"`
}

// Store persists runs
type Store struct {
	db         *sql.DB
	path       string
	maxEntries int
}

// Open opens or creates the database at path. Runs beyond maxEntries are
// pruned oldest first; 0 keeps everything.
func Open(path string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, path: path, maxEntries: maxEntries}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			repaired    INTEGER NOT NULL,
			dry_run     INTEGER NOT NULL,
			host        TEXT NOT NULL,
			reason      TEXT NOT NULL,
			feed_count  INTEGER NOT NULL,
			feeds       TEXT NOT NULL,
			sdr_mode    TEXT NOT NULL,
			sdr_driver  TEXT NOT NULL,
			services    TEXT NOT NULL,
			warnings    INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Record inserts a run and prunes old entries
func (s *Store) Record(run Run) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO runs
		(started_at, duration_ms, repaired, dry_run, host, reason, feed_count, feeds, sdr_mode, sdr_driver, services, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		boolToInt(run.Repaired),
		boolToInt(run.DryRun),
		run.Host,
		run.Reason,
		run.FeedCount,
		run.Feeds,
		run.SDRMode,
		run.SDRDriver,
		strings.Join(run.Services, ","),
		run.Warnings,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	if s.maxEntries > 0 {
		if _, err := s.db.Exec(`DELETE FROM runs WHERE id NOT IN
			(SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, s.maxEntries); err != nil {
			return id, fmt.Errorf("failed to prune runs: %w", err)
		}
	}
	return id, nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) Recent(limit int) ([]Run, error) {
	query := `SELECT id, started_at, duration_ms, repaired, dry_run, host, reason,
		feed_count, feeds, sdr_mode, sdr_driver, services, warnings
		FROM runs ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			durationMS int64
			repaired   int
			dryRun     int
			services   string
		)
		if err := rows.Scan(&run.ID, &startedAt, &durationMS, &repaired, &dryRun, &run.Host, &run.Reason,
			&run.FeedCount, &run.Feeds, &run.SDRMode, &run.SDRDriver, &services, &run.Warnings); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.Repaired = repaired != 0
		run.DryRun = dryRun != 0
		if services != "" {
			run.Services = strings.Split(services, ",")
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// Count returns the number of stored runs
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
