// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gacv-plot renders daily overview plots of a GENEActiv .bin
// file: acceleration magnitude and environment (light, temperature)
// time series for each recorded day, plus the magnitude distribution
// over the whole recording.
package main // import "github.com/go-dmti/wear/cmd/gacv-plot"

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/go-dmti/wear/geneactiv"
)

// maxPoints bounds the number of samples drawn per line.
const maxPoints = 20000

func main() {
	log.SetPrefix("gacv-plot: ")
	log.SetFlags(0)

	var (
		odir = flag.String("o", "plots", "output directory for PNG files")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: gacv-plot [OPTIONS] file.bin

ex:
 $> gacv-plot -o plots ./sub01.bin

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("missing input GENEActiv file")
	}

	err := process(*odir, flag.Arg(0))
	if err != nil {
		log.Fatalf("could not plot %q: %+v", flag.Arg(0), err)
	}
}

func process(odir, fname string) error {
	data, hdr, err := geneactiv.ReadFile(fname, geneactiv.Windows{})
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	err = os.MkdirAll(odir, 0755)
	if err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	for i, day := range data.Days {
		if day.Len() == 0 {
			continue
		}
		err := plotDay(odir, i, day, data)
		if err != nil {
			return fmt.Errorf("day %d: %w", i, err)
		}
	}

	err = plotMagDist(odir, data, &hdr)
	if err != nil {
		return fmt.Errorf("could not plot magnitude distribution: %w", err)
	}

	return nil
}

// plotDay renders the magnitude and environment time series of one
// recorded day, downsampled to at most maxPoints points per line.
func plotDay(odir string, i int, day geneactiv.Span, data *geneactiv.Data) error {
	var (
		t0   = data.Time[day.Start]
		step = day.Len()/maxPoints + 1

		mags   = make(plotter.XYs, 0, day.Len()/step+1)
		lights = make(plotter.XYs, 0, day.Len()/step+1)
		temps  = make(plotter.XYs, 0, day.Len()/step+1)
	)
	for j := day.Start; j < day.Stop; j += step {
		var (
			acc = data.Accel[j]
			mag = math.Sqrt(acc[0]*acc[0] + acc[1]*acc[1] + acc[2]*acc[2])
			hrs = (data.Time[j] - t0) / 3600
		)
		mags = append(mags, plotter.XY{X: hrs, Y: mag})
		lights = append(lights, plotter.XY{X: hrs, Y: data.Light[j]})
		temps = append(temps, plotter.XY{X: hrs, Y: data.Temp[j]})
	}

	date := time.Unix(int64(t0), 0).UTC().Format("2006-01-02")

	p := hplot.New()
	p.Title.Text = fmt.Sprintf("day %d (%s)", i, date)
	p.X.Label.Text = "time (h)"
	p.Y.Label.Text = "acceleration magnitude (g)"

	mline, err := plotter.NewLine(mags)
	if err != nil {
		return fmt.Errorf("could not build magnitude line: %w", err)
	}
	mline.Color = color.RGBA{R: 255, A: 255}
	mline.Width = vg.Points(1)
	p.Add(mline)

	err = p.Save(30*vg.Centimeter, 10*vg.Centimeter,
		filepath.Join(odir, fmt.Sprintf("day_%02d_mag.png", i)),
	)
	if err != nil {
		return fmt.Errorf("could not save magnitude plot: %w", err)
	}

	p = hplot.New()
	p.Title.Text = fmt.Sprintf("day %d (%s)", i, date)
	p.X.Label.Text = "time (h)"
	p.Y.Label.Text = "light (lux) / temperature (C)"

	lline, err := plotter.NewLine(lights)
	if err != nil {
		return fmt.Errorf("could not build light line: %w", err)
	}
	lline.Color = color.RGBA{R: 255, G: 165, A: 255}
	lline.Width = vg.Points(1)

	tline, err := plotter.NewLine(temps)
	if err != nil {
		return fmt.Errorf("could not build temperature line: %w", err)
	}
	tline.Color = color.RGBA{B: 255, A: 255}
	tline.Width = vg.Points(1)

	p.Add(lline, tline)
	p.Legend.Add("light", lline)
	p.Legend.Add("temp", tline)
	p.Legend.Top = true

	err = p.Save(30*vg.Centimeter, 10*vg.Centimeter,
		filepath.Join(odir, fmt.Sprintf("day_%02d_env.png", i)),
	)
	if err != nil {
		return fmt.Errorf("could not save environment plot: %w", err)
	}

	return nil
}

// plotMagDist renders the distribution of acceleration magnitudes over
// the whole recording, binned over the accelerometer range.
func plotMagDist(odir string, data *geneactiv.Data, hdr *geneactiv.Header) error {
	h := hbook.NewH1D(100, 0, 8)
	for i := 0; i < data.Len(); i++ {
		acc := data.Accel[i]
		h.Fill(math.Sqrt(acc[0]*acc[0]+acc[1]*acc[1]+acc[2]*acc[2]), 1)
	}

	p := hplot.New()
	p.Title.Text = fmt.Sprintf("magnitude distribution (rate=%v Hz)", hdr.Rate)
	p.X.Label.Text = "acceleration magnitude (g)"
	p.Y.Label.Text = "samples"
	p.Add(hplot.NewH1D(h))

	err := p.Save(20*vg.Centimeter, 15*vg.Centimeter, filepath.Join(odir, "mag_dist.png"))
	if err != nil {
		return fmt.Errorf("could not save histogram: %w", err)
	}

	return nil
}
