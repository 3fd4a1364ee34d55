// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-dmti/wear/geneactiv"
	"github.com/go-dmti/wear/studydb"
)

const (
	dbname = "gastudy"
)

func main() {
	log.SetPrefix("gacv-sql: ")
	log.SetFlags(0)

	var (
		record = flag.String("record", "", "GENEActiv file to decode and record")
		wspec  = flag.String("w", "0:24", "comma-separated day windows (base:period, in hours)")
	)

	flag.Parse()

	db, err := studydb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open study db: %+v", err)
	}
	defer db.Close()

	switch *record {
	case "":
		err = doQuery(db)
	default:
		err = doRecord(db, *record, *wspec)
	}
	if err != nil {
		log.Fatalf("could not process study db: %+v", err)
	}
}

func doQuery(db *studydb.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	last, err := db.LastRun(ctx)
	if err != nil {
		return fmt.Errorf("could not get last run: %w", err)
	}
	log.Printf("last run: %d (%s, %d samples)", last.ID, last.File, last.Samples)

	runs, err := db.Runs(ctx)
	if err != nil {
		return fmt.Errorf("could not get runs: %w", err)
	}
	log.Printf("runs: %d", len(runs))
	for i, run := range runs {
		log.Printf("row[%d]: %#v", i, run)
	}

	{
		rows, err := db.QueryContext(ctx, "SELECT day, samples, mean_mag, mean_light, mean_temp FROM days WHERE run_id=? ORDER BY day", last.ID)
		if err != nil {
			return fmt.Errorf("could not get day summaries: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				day     int
				samples int
				mag     float64
				light   float64
				temp    float64
			)
			err = rows.Scan(&day, &samples, &mag, &light, &temp)
			if err != nil {
				return fmt.Errorf("could not scan day summary: %w", err)
			}
			log.Printf(">>> day=%02d, samples=%d, mag=%v, light=%v, temp=%v",
				day, samples, mag, light, temp,
			)
		}
	}

	return nil
}

func doRecord(db *studydb.DB, fname, wspec string) error {
	win, err := geneactiv.ParseWindows(wspec)
	if err != nil {
		return fmt.Errorf("could not parse day windows %q: %w", wspec, err)
	}

	sum, err := studydb.Checksum(fname)
	if err != nil {
		return fmt.Errorf("could not checksum %q: %w", fname, err)
	}

	data, hdr, err := geneactiv.ReadFile(fname, win)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	ctx := context.Background()
	id, err := db.RecordRun(ctx, studydb.Run{
		File:      fname,
		Sum:       sum,
		Rate:      hdr.Rate,
		Pages:     hdr.Pages,
		Blocks:    hdr.Blocks,
		Samples:   data.Len(),
		RateFixes: hdr.RateFixes,
	})
	if err != nil {
		return fmt.Errorf("could not record run of %q: %w", fname, err)
	}

	err = db.RecordDays(ctx, id, data.Summaries())
	if err != nil {
		return fmt.Errorf("could not record day summaries of run %d: %w", id, err)
	}

	log.Printf("recorded run %d (%d days)", id, len(data.Days))
	return nil
}
