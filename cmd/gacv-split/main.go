// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gacv-split extracts a range of recorded days from a
// GENEActiv .bin file into a standalone .bin file.
package main // import "github.com/go-dmti/wear/cmd/gacv-split"

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-dmti/wear/geneactiv"
	"github.com/go-dmti/wear/internal/xcnv"
)

var (
	msg = log.New(os.Stdout, "gacv-split: ", 0)
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	var (
		fset = flag.NewFlagSet("gacv", flag.ExitOnError)

		oname = fset.String("o", "out.bin", "path to output GENEActiv file")
		from  = fset.Int("from", 0, "first day to extract")
		to    = fset.Int("to", -1, "day past the last one to extract (-1 extracts through the last day)")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: gacv-split [OPTIONS] file.bin

ex:
 $> gacv-split -o day1.bin -from 1 -to 2 ./input.bin

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 1 {
		fset.Usage()
		msg.Fatalf("missing input GENEActiv file")
	}

	if *oname == "" {
		fset.Usage()
		msg.Fatalf("invalid output GENEActiv file")
	}

	for _, arg := range fset.Args() {
		err := process(*oname, *from, *to, arg)
		if err != nil {
			msg.Fatalf("could not split GENEActiv file %q: %+v", arg, err)
		}
	}
}

func process(oname string, from, to int, fname string) error {
	data, hdr, err := geneactiv.ReadFile(fname, geneactiv.Windows{})
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	if to < 0 {
		to = len(data.Days)
	}

	o, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer o.Close()

	err = xcnv.SliceDays(o, &hdr, data, from, to, msg)
	if err != nil {
		return fmt.Errorf("could not slice days [%d, %d): %w", from, to, err)
	}

	err = o.Close()
	if err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}

	return nil
}
