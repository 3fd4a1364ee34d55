// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gacv-stats computes epoch-level activity metrics from a GENEActiv
// .bin file: moving statistics of the acceleration magnitude, written
// as CSV, plus channel histograms summarized on stdout.
//
// Usage: gacv-stats [OPTIONS] FILE
//
// Example:
//
//  $> gacv-stats -o stats.csv -med 5 ./testdata/sub01.bin
//  === GENEActiv file ./testdata/sub01.bin ===
//  rate:    100 Hz
//  samples: 604800
//  epochs:  2016
//  mag:     entries=604800 mean=1.0371 std-dev=0.24617
//  light:   entries=604800 mean=312.44 std-dev=104.01
//  temp:    entries=604800 mean=29.441 std-dev=1.2033
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"go-hep.org/x/hep/csvutil"
	"go-hep.org/x/hep/hbook"

	"github.com/go-dmti/wear/geneactiv"
	"github.com/go-dmti/wear/movstat"
)

const usage = `gacv-stats computes epoch-level activity metrics from a GENEActiv
.bin file: moving statistics of the acceleration magnitude, written
as CSV, plus channel histograms summarized on stdout.

Usage: gacv-stats [OPTIONS] FILE

Example:

 $> gacv-stats -o stats.csv -med 5 ./testdata/sub01.bin
 === GENEActiv file ./testdata/sub01.bin ===
 rate:    100 Hz
 samples: 604800
 epochs:  2016
 mag:     entries=604800 mean=1.0371 std-dev=0.24617
 light:   entries=604800 mean=312.44 std-dev=104.01
 temp:    entries=604800 mean=29.441 std-dev=1.2033

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("gacv-stats: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("gacv", flag.ExitOnError)

		oname  = fset.String("o", "stats.csv", "path to output epoch CSV file")
		med    = fset.Int("med", 0, "moving-median window over magnitudes, in samples (0 disables, must be odd)")
		window = fset.Int("win", 300, "epoch length, in samples")
		skip   = fset.Int("skip", 300, "samples between epoch starts")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 1 {
		fset.Usage()
		log.Fatalf("missing path to input GENEActiv file")
	}

	err = process(w, *oname, fset.Arg(0), *med, *window, *skip)
	if err != nil {
		log.Fatalf("could not compute stats for %q: %+v", fset.Arg(0), err)
	}
}

func process(w io.Writer, oname, fname string, med, window, skip int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	data, hdr, err := geneactiv.ReadFile(fname, geneactiv.Windows{})
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	mag := magnitudes(data)
	if med > 0 {
		mag, err = movstat.Median(nil, mag, med)
		if err != nil {
			return fmt.Errorf("could not smooth magnitudes: %w", err)
		}
	}

	// histogram bounds follow the device capability ranges.
	var (
		hmag   = hbook.NewH1D(100, 0, 8)
		hlight = hbook.NewH1D(100, 0, 20000)
		htemp  = hbook.NewH1D(100, 0, 70)
	)
	for i, m := range mag {
		hmag.Fill(m, 1)
		hlight.Fill(data.Light[i], 1)
		htemp.Fill(data.Temp[i], 1)
	}

	means, err := movstat.Mean(nil, mag, window, skip)
	if err != nil {
		return fmt.Errorf("could not compute epoch means: %w", err)
	}
	sds, err := movstat.StdDev(nil, mag, window, skip)
	if err != nil {
		return fmt.Errorf("could not compute epoch std-devs: %w", err)
	}
	skews, err := movstat.Skew(nil, mag, window, skip)
	if err != nil {
		return fmt.Errorf("could not compute epoch skews: %w", err)
	}
	kurts, err := movstat.Kurtosis(nil, mag, window, skip)
	if err != nil {
		return fmt.Errorf("could not compute epoch kurtoses: %w", err)
	}

	tbl, err := csvutil.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", oname, err)
	}
	defer tbl.Close()
	tbl.Writer.Comma = ';'

	err = tbl.WriteHeader("# epoch;time;mean;sd;skew;kurt")
	if err != nil {
		return fmt.Errorf("could not write CSV header: %w", err)
	}

	for i, mean := range means {
		err = tbl.WriteRow(
			i, fmt.Sprintf("%.3f", data.Time[i*skip]),
			mean, sds[i], skews[i], kurts[i],
		)
		if err != nil {
			return fmt.Errorf("could not write CSV row %d: %w", i, err)
		}
	}

	err = tbl.Close()
	if err != nil {
		return fmt.Errorf("could not close %q: %w", oname, err)
	}

	fmt.Fprintf(wbuf, "=== GENEActiv file %s ===\n", fname)
	fmt.Fprintf(wbuf, "rate:    %v Hz\n", hdr.Rate)
	fmt.Fprintf(wbuf, "samples: %d\n", data.Len())
	fmt.Fprintf(wbuf, "epochs:  %d\n", len(means))
	fmt.Fprintf(wbuf, "mag:     entries=%d mean=%v std-dev=%v\n",
		hmag.Entries(), hmag.XMean(), hmag.XStdDev(),
	)
	fmt.Fprintf(wbuf, "light:   entries=%d mean=%v std-dev=%v\n",
		hlight.Entries(), hlight.XMean(), hlight.XStdDev(),
	)
	fmt.Fprintf(wbuf, "temp:    entries=%d mean=%v std-dev=%v\n",
		htemp.Entries(), htemp.XMean(), htemp.XStdDev(),
	)

	return nil
}

// magnitudes computes the per-sample acceleration magnitude of data.
func magnitudes(data *geneactiv.Data) []float64 {
	out := make([]float64, data.Len())
	for i := range out {
		acc := data.Accel[i]
		out[i] = math.Sqrt(acc[0]*acc[0] + acc[1]*acc[1] + acc[2]*acc[2])
	}
	return out
}
