// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package studydb

import (
	"context"
	"database/sql/driver"
	"hash/crc32"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/go-dmti/wear/geneactiv"
	"github.com/go-dmti/wear/internal/fakedb"
)

func init() {
	drvName = "fakedb"
}

func TestOpen(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open studydb: %+v", err)
	}
	defer db.Close()
}

func TestRecordRun(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open studydb: %+v", err)
	}
	defer db.Close()

	t0 := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	err = fakedb.Run(context.Background(), fakedb.Rows{}, func(ctx context.Context) error {
		id, err := db.RecordRun(ctx, Run{
			File:    "topside.bin",
			Sum:     0xdeadbeef,
			Rate:    100,
			Pages:   2,
			Blocks:  2,
			Samples: 600,
			Time:    t0,
		})
		if err != nil {
			t.Fatalf("could not record run: %+v", err)
		}
		if got, want := id, int64(1); got != want {
			t.Fatalf("invalid run id: got=%d, want=%d", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("could not run fake db: %+v", err)
	}

	execs := fakedb.Execs()
	if got, want := len(execs), 1; got != want {
		t.Fatalf("invalid number of statements: got=%d, want=%d", got, want)
	}
	if got, want := execs[0].Query, "INSERT INTO runs (file, checksum, rate, pages, blocks, samples, rate_fixes, datetime) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"; got != want {
		t.Fatalf("invalid statement:\ngot= %q\nwant=%q", got, want)
	}
	want := []driver.Value{
		"topside.bin", int64(0xdeadbeef), 100.0,
		int64(2), int64(2), int64(600), int64(0), t0,
	}
	if got := execs[0].Args; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid statement args:\ngot= %#v\nwant=%#v", got, want)
	}
}

func TestLastRun(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open studydb: %+v", err)
	}
	defer db.Close()

	t0 := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	want := Run{
		ID:        7,
		File:      "topside.bin",
		Sum:       123,
		Rate:      100,
		Pages:     2,
		Blocks:    2,
		Samples:   600,
		RateFixes: 1,
		Time:      t0,
	}

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: []string{
			"identifier", "file", "checksum", "rate", "pages",
			"blocks", "samples", "rate_fixes", "datetime",
		},
		Values: [][]driver.Value{
			{
				want.ID, want.File, want.Sum, want.Rate, want.Pages,
				want.Blocks, want.Samples, want.RateFixes, want.Time,
			},
		},
	}, func(ctx context.Context) error {
		run, err := db.LastRun(ctx)
		if err != nil {
			t.Fatalf("could not retrieve last run: %+v", err)
		}

		if got, want := run, want; !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid last run:\ngot= %#v\nwant=%#v", got, want)
		}
		return nil
	})
}

func TestLastRunEmpty(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open studydb: %+v", err)
	}
	defer db.Close()

	_ = fakedb.Run(context.Background(), fakedb.Rows{}, func(ctx context.Context) error {
		run, err := db.LastRun(ctx)
		if err != nil {
			t.Fatalf("could not retrieve last run: %+v", err)
		}
		if got, want := run, (Run{}); !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid empty-db run:\ngot= %#v\nwant=%#v", got, want)
		}
		return nil
	})
}

func TestRuns(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open studydb: %+v", err)
	}
	defer db.Close()

	t0 := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	want := []Run{
		{ID: 1, File: "a.bin", Sum: 1, Rate: 100, Pages: 1, Blocks: 1, Samples: 300, Time: t0},
		{ID: 2, File: "b.bin", Sum: 2, Rate: 85, Pages: 2, Blocks: 2, Samples: 600, RateFixes: 1, Time: t0.Add(time.Hour)},
	}

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: []string{
			"identifier", "file", "checksum", "rate", "pages",
			"blocks", "samples", "rate_fixes", "datetime",
		},
		Values: [][]driver.Value{
			{
				want[0].ID, want[0].File, want[0].Sum, want[0].Rate, want[0].Pages,
				want[0].Blocks, want[0].Samples, want[0].RateFixes, want[0].Time,
			},
			{
				want[1].ID, want[1].File, want[1].Sum, want[1].Rate, want[1].Pages,
				want[1].Blocks, want[1].Samples, want[1].RateFixes, want[1].Time,
			},
		},
	}, func(ctx context.Context) error {
		runs, err := db.Runs(ctx)
		if err != nil {
			t.Fatalf("could not retrieve runs: %+v", err)
		}

		if got, want := runs, want; !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid runs:\ngot= %#v\nwant=%#v", got, want)
		}
		return nil
	})
}

func TestRecordDays(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open studydb: %+v", err)
	}
	defer db.Close()

	days := []geneactiv.DaySummary{
		{
			Day: 0, Start: 0, Stop: 2, Samples: 2,
			Begin: 100, End: 101,
			MeanMag: 2.5, MinMag: 0, MaxMag: 5,
			MeanLight: 15, MeanTemp: 21,
		},
		{
			Day: 1, Start: 2, Stop: 4, Samples: 2,
			Begin: 102, End: 103,
			MeanMag: 6.5, MinMag: 3, MaxMag: 10,
			MeanLight: 35, MeanTemp: 25,
		},
	}

	err = fakedb.Run(context.Background(), fakedb.Rows{}, func(ctx context.Context) error {
		return db.RecordDays(ctx, 7, days)
	})
	if err != nil {
		t.Fatalf("could not record days: %+v", err)
	}

	execs := fakedb.Execs()
	if got, want := len(execs), 2; got != want {
		t.Fatalf("invalid number of statements: got=%d, want=%d", got, want)
	}
	if got, want := execs[0].Query, "INSERT INTO days (run_id, day, day_start, day_stop, samples, begin_time, end_time, mean_mag, min_mag, max_mag, mean_light, mean_temp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"; got != want {
		t.Fatalf("invalid statement:\ngot= %q\nwant=%q", got, want)
	}
	want := []driver.Value{
		int64(7), int64(1), int64(2), int64(4), int64(2),
		102.0, 103.0, 6.5, 3.0, 10.0, 35.0, 25.0,
	}
	if got := execs[1].Args; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid statement args:\ngot= %#v\nwant=%#v", got, want)
	}
}

func TestChecksum(t *testing.T) {
	name := filepath.Join(t.TempDir(), "data.bin")
	err := os.WriteFile(name, []byte("hello wear\n"), 0644)
	if err != nil {
		t.Fatalf("could not create file: %+v", err)
	}

	got, err := Checksum(name)
	if err != nil {
		t.Fatalf("could not checksum file: %+v", err)
	}
	if want := crc32.ChecksumIEEE([]byte("hello wear\n")); got != want {
		t.Fatalf("invalid checksum: got=0x%x, want=0x%x", got, want)
	}

	if _, err := Checksum(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
