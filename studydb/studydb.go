// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package studydb holds types to record decode runs and per-day
// summaries of a GENEActiv study into its bookkeeping database.
package studydb // import "github.com/go-dmti/wear/studydb"

import (
	"context"
	"database/sql"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"time"

	"github.com/go-dmti/wear/geneactiv"
	_ "github.com/go-sql-driver/mysql"
)

var (
	host = envOr("WEAR_DB_HOST", "localhost")
	usr  = envOr("WEAR_DB_USER", "wear")
	pwd  = envOr("WEAR_DB_PASS", "s3cr3t")

	drvName = "mysql"
)

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

// Run is the bookkeeping record of one decode run.
type Run struct {
	ID        int64     `json:"id"`
	File      string    `json:"file"`
	Sum       uint32    `json:"sum"` // IEEE CRC-32 of the file
	Rate      float64   `json:"rate"`
	Pages     int       `json:"pages"`
	Blocks    int64     `json:"blocks"`
	Samples   int       `json:"samples"`
	RateFixes int       `json:"rate_fixes"`
	Time      time.Time `json:"time"`
}

// DB exposes convenience methods to record and retrieve decode runs
// from the study database.
type DB struct {
	db   *sql.DB
	name string // name of the study database
}

// Open opens a connection to the study database dbname. Credentials
// come from the WEAR_DB_HOST, WEAR_DB_USER and WEAR_DB_PASS environment
// variables.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("studydb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("studydb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("studydb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// RecordRun inserts the bookkeeping record of one decode run and
// returns its database id. A zero run time records the current time.
func (db *DB) RecordRun(ctx context.Context, run Run) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if run.Time.IsZero() {
		run.Time = time.Now().UTC()
	}

	res, err := db.db.ExecContext(
		ctx,
		"INSERT INTO runs (file, checksum, rate, pages, blocks, samples, rate_fixes, datetime) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.File, run.Sum, run.Rate, run.Pages, run.Blocks,
		run.Samples, run.RateFixes, run.Time,
	)
	if err != nil {
		return 0, fmt.Errorf("studydb: could not record run of %q: %w", run.File, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("studydb: could not get run id of %q: %w", run.File, err)
	}

	return id, nil
}

// LastRun returns the most recent decode run, or a zero Run when the
// database holds none.
func (db *DB) LastRun(ctx context.Context) (Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var run Run
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT identifier, file, checksum, rate, pages, blocks, samples, rate_fixes, datetime FROM runs ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return run, fmt.Errorf("studydb: could not query last run: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(
			&run.ID, &run.File, &run.Sum, &run.Rate, &run.Pages,
			&run.Blocks, &run.Samples, &run.RateFixes, &run.Time,
		)
		if err != nil {
			return run, fmt.Errorf("studydb: could not get last run value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return run, fmt.Errorf("studydb: could not scan db for last run: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("studydb: context error while retrieving last run: %w", err)
	}

	return run, nil
}

// Runs returns all recorded decode runs, oldest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var runs []Run
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT identifier, file, checksum, rate, pages, blocks, samples, rate_fixes, datetime FROM runs ORDER BY datetime",
	)
	if err != nil {
		return runs, fmt.Errorf("studydb: could not query runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var run Run
		err = rows.Scan(
			&run.ID, &run.File, &run.Sum, &run.Rate, &run.Pages,
			&run.Blocks, &run.Samples, &run.RateFixes, &run.Time,
		)
		if err != nil {
			return runs, fmt.Errorf("studydb: could not scan runs: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return runs, fmt.Errorf("studydb: could not scan db for runs: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return runs, fmt.Errorf("studydb: context error while retrieving runs: %w", err)
	}

	return runs, nil
}

// RecordDays inserts the per-day summaries of the decode run with the
// given database id.
func (db *DB) RecordDays(ctx context.Context, run int64, days []geneactiv.DaySummary) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, day := range days {
		_, err := db.db.ExecContext(
			ctx,
			"INSERT INTO days (run_id, day, day_start, day_stop, samples, begin_time, end_time, mean_mag, min_mag, max_mag, mean_light, mean_temp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			run, day.Day, day.Start, day.Stop, day.Samples,
			day.Begin, day.End, day.MeanMag, day.MinMag, day.MaxMag,
			day.MeanLight, day.MeanTemp,
		)
		if err != nil {
			return fmt.Errorf("studydb: could not record day %d of run %d: %w", day.Day, run, err)
		}
	}

	return nil
}

// Checksum computes the IEEE CRC-32 of the named file, the fingerprint
// stored with each decode run.
func Checksum(name string) (uint32, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, fmt.Errorf("studydb: could not open %q: %w", name, err)
	}
	defer f.Close()

	sum := crc32.NewIEEE()
	if _, err := io.Copy(sum, f); err != nil {
		return 0, fmt.Errorf("studydb: could not checksum %q: %w", name, err)
	}

	return sum.Sum32(), nil
}
