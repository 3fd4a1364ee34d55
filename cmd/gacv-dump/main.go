// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gacv-dump decodes and displays GENEActiv .bin files.
//
// Usage: gacv-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> gacv-dump -w 8:12 -sum ./testdata/sub01.bin
//  === GENEActiv file ./testdata/sub01.bin ===
//  rate:               100 Hz
//  pages:             2016
//  blocks:            2016
//  samples:         604800
//  rate fixes:           0
//  gain:        [2004 2013 2034]
//  offset:      [7 -12 30]
//  light:       911 lux / 604 V
//  days:                 2
//    day 00: 2018-06-14 [       0,  345600)
//    day 01: 2018-06-15 [  345600,  604800)
//  window 0: base=8h period=12h
//    day 00: [       0,  345600)
//    day 01: [  345600,  604800)
//  [...]
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-dmti/wear/geneactiv"
)

const usage = `gacv-dump decodes and displays GENEActiv .bin files.

Usage: gacv-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> gacv-dump -w 8:12 -sum ./testdata/sub01.bin
 === GENEActiv file ./testdata/sub01.bin ===
 rate:               100 Hz
 pages:             2016
 blocks:            2016
 samples:         604800
 rate fixes:           0
 gain:        [2004 2013 2034]
 offset:      [7 -12 30]
 light:       911 lux / 604 V
 days:                 2
   day 00: 2018-06-14 [       0,  345600)
   day 01: 2018-06-15 [  345600,  604800)
 window 0: base=8h period=12h
   day 00: [       0,  345600)
   day 01: [  345600,  604800)
 [...]

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("gacv-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("gacv", flag.ExitOnError)

		wspec = fset.String("w", "0:24", "comma-separated day windows (base:period, in hours)")
		sum   = fset.Bool("sum", false, "display per-day summaries")
		jsout = fset.Bool("json", false, "display per-day summaries as JSON")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input GENEActiv file")
	}

	win, err := geneactiv.ParseWindows(*wspec)
	if err != nil {
		log.Fatalf("could not parse day windows %q: %+v", *wspec, err)
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, win, *sum, *jsout)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, win geneactiv.Windows, sum, jsout bool) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	data, hdr, err := geneactiv.ReadFile(fname, win)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	if jsout {
		err := json.NewEncoder(wbuf).Encode(data.Summaries())
		if err != nil {
			return fmt.Errorf("could not encode summaries of %q: %w", fname, err)
		}
		return wbuf.Flush()
	}

	fmt.Fprintf(wbuf, "=== GENEActiv file %s ===\n", fname)
	fmt.Fprintf(wbuf, "rate:        % 10v Hz\n", hdr.Rate)
	fmt.Fprintf(wbuf, "pages:       % 10d\n", hdr.Pages)
	fmt.Fprintf(wbuf, "blocks:      % 10d\n", hdr.Blocks)
	fmt.Fprintf(wbuf, "samples:     % 10d\n", data.Len())
	fmt.Fprintf(wbuf, "rate fixes:  % 10d\n", hdr.RateFixes)
	fmt.Fprintf(wbuf, "gain:        %v\n", hdr.Gain)
	fmt.Fprintf(wbuf, "offset:      %v\n", hdr.Offset)
	fmt.Fprintf(wbuf, "light:       %v lux / %v V\n", hdr.Lux, hdr.Volts)
	fmt.Fprintf(wbuf, "days:        % 10d\n", len(data.Days))

	for i, day := range data.Days {
		fmt.Fprintf(wbuf, "  day %02d: %s [% 8d, % 8d)\n",
			i, dayDate(data, day), day.Start, day.Stop,
		)
	}

	for wi, spans := range data.Wins {
		fmt.Fprintf(wbuf, "window %d: base=%vh period=%vh\n",
			wi, win.Bases[wi], win.Periods[wi],
		)
		for d, span := range spans {
			if !span.Valid() {
				fmt.Fprintf(wbuf, "  day %02d: (no overlap)\n", d)
				continue
			}
			fmt.Fprintf(wbuf, "  day %02d: [% 8d, % 8d)\n", d, span.Start, span.Stop)
		}
	}

	if sum {
		for _, s := range data.Summaries() {
			fmt.Fprintf(wbuf, "summary day %02d: % 8d samples, mag mean=%v min=%v max=%v, light mean=%v, temp mean=%v\n",
				s.Day, s.Samples, s.MeanMag, s.MinMag, s.MaxMag,
				s.MeanLight, s.MeanTemp,
			)
		}
	}

	return nil
}

// dayDate formats the calendar date of the first sample of day.
func dayDate(data *geneactiv.Data, day geneactiv.Span) string {
	if day.Len() == 0 {
		return "----------"
	}
	return time.Unix(int64(data.Time[day.Start]), 0).UTC().Format("2006-01-02")
}
