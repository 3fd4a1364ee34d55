// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gacv2csv converts GENEActiv .bin files into CSV files, one
// CSV per input, decoding several files concurrently.
package main // import "github.com/go-dmti/wear/cmd/gacv2csv"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go-hep.org/x/hep/csvutil"
	"golang.org/x/sync/errgroup"

	"github.com/go-dmti/wear/geneactiv"
	"github.com/go-dmti/wear/internal/mmap"
	"github.com/go-dmti/wear/internal/xcnv"
)

func main() {
	log.SetPrefix("gacv2csv: ")
	log.SetFlags(0)

	var (
		wspec = flag.String("w", "", "comma-separated day windows (base:period, in hours)")
		nproc = flag.Int("j", runtime.NumCPU(), "number of files to convert concurrently")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: gacv2csv [OPTIONS] file1.bin [file2.bin [...]]

ex:
 $> gacv2csv -j 4 ./sub01.bin ./sub02.bin

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing input GENEActiv file")
	}

	win, err := geneactiv.ParseWindows(*wspec)
	if err != nil {
		log.Fatalf("could not parse day windows %q: %+v", *wspec, err)
	}

	err = process(win, *nproc, flag.Args())
	if err != nil {
		log.Fatalf("could not convert GENEActiv files: %+v", err)
	}
}

func process(win geneactiv.Windows, nproc int, fnames []string) error {
	if nproc < 1 {
		nproc = 1
	}

	var grp errgroup.Group
	grp.SetLimit(nproc)
	for _, fname := range fnames {
		fname := fname
		grp.Go(func() error {
			return convert(outFileFrom(fname), fname, win)
		})
	}
	return grp.Wait()
}

func convert(oname, fname string, win geneactiv.Windows) error {
	msg := log.New(os.Stdout, fmt.Sprintf("gacv2csv: %s: ", filepath.Base(fname)), 0)

	h, err := mmap.Open(fname)
	if err != nil {
		return fmt.Errorf("could not mmap %q: %w", fname, err)
	}
	defer h.Close()

	data, hdr, err := geneactiv.Read(h.NewReader(), win)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	tbl, err := csvutil.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", oname, err)
	}
	defer tbl.Close()
	tbl.Writer.Comma = ';'

	err = xcnv.GA2CSV(tbl, data, &hdr, msg)
	if err != nil {
		return fmt.Errorf("could not convert %q: %w", fname, err)
	}

	err = tbl.Close()
	if err != nil {
		return fmt.Errorf("could not close %q: %w", oname, err)
	}

	return nil
}

func outFileFrom(fname string) string {
	ext := filepath.Ext(fname)
	if ext == "" {
		return fname + ".csv"
	}
	return strings.TrimSuffix(fname, ext) + ".csv"
}
