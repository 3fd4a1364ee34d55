// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-dmti/wear/geneactiv"
)

var blockTime = time.Date(2018, 6, 14, 8, 0, 0, 0, time.UTC)

// genFile writes a 2-block recording: 300 samples of accel (0,3,4) g
// with light 100 lux at 20 C, then 300 zero samples at 21.5 C.
func genFile(t *testing.T, fname string) {
	t.Helper()

	hdr := geneactiv.Header{
		Rate:  100,
		Gain:  [3]float64{100, 100, 100},
		Volts: 100,
		Lux:   100,
		Pages: 2,
	}

	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("could not create GENEActiv file: %+v", err)
	}
	defer f.Close()

	enc := geneactiv.NewEncoder(f)
	err = enc.EncodeHeader(&hdr)
	if err != nil {
		t.Fatalf("could not encode header: %+v", err)
	}

	for _, blk := range []geneactiv.Block{
		{Seq: 0, Time: blockTime, Temp: 20, Rate: 100, Data: payload(t, [4]uint16{0, 3, 4, 400})},
		{Seq: 1, Time: blockTime.Add(3 * time.Second), Temp: 21.5, Rate: 100, Data: payload(t, [4]uint16{0, 0, 0, 0})},
	} {
		err := enc.EncodeBlock(&blk)
		if err != nil {
			t.Fatalf("could not encode block %d: %+v", blk.Seq, err)
		}
	}

	err = f.Close()
	if err != nil {
		t.Fatalf("could not close GENEActiv file: %+v", err)
	}
}

func payload(t *testing.T, sample [4]uint16) string {
	t.Helper()

	codes := make([]uint16, 0, 4*geneactiv.SamplesPerBlock)
	for i := 0; i < geneactiv.SamplesPerBlock; i++ {
		codes = append(codes, sample[0], sample[1], sample[2], sample[3])
	}
	p, err := geneactiv.PackRaw(codes)
	if err != nil {
		t.Fatalf("could not pack payload: %+v", err)
	}
	return p
}

func TestDump(t *testing.T) {
	tmp, err := os.MkdirTemp("", "gacv-dump-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)

	fname := filepath.Join(tmp, "sub01.bin")
	genFile(t, fname)

	xmain(io.Discard, []string{"-w", "8:12", "-sum", fname})
}

func TestProcess(t *testing.T) {
	tmp, err := os.MkdirTemp("", "gacv-dump-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	for _, tc := range []struct {
		name  string
		raw   []byte // nil generates the 2-block test recording
		wspec string
		sum   bool
		jsout bool
		want  string
		err   error
	}{
		{
			name:  "dump",
			wspec: "8:12",
			sum:   true,
			want: fmt.Sprintf(`=== GENEActiv file %s ===
rate:               100 Hz
pages:                2
blocks:               2
samples:            600
rate fixes:           0
gain:        [100 100 100]
offset:      [0 0 0]
light:       100 lux / 100 V
days:                 1
  day 00: 2018-06-14 [       0,      600)
window 0: base=8h period=12h
  day 00: [       0,      600)
summary day 00:      600 samples, mag mean=2.5 min=0 max=5, light mean=50, temp mean=20.75
`, filepath.Join(tmp, "dump.bin")),
		},
		{
			name:  "no-overlap",
			wspec: "20:4",
			want: fmt.Sprintf(`=== GENEActiv file %s ===
rate:               100 Hz
pages:                2
blocks:               2
samples:            600
rate fixes:           0
gain:        [100 100 100]
offset:      [0 0 0]
light:       100 lux / 100 V
days:                 1
  day 00: 2018-06-14 [       0,      600)
window 0: base=20h period=4h
  day 00: (no overlap)
`, filepath.Join(tmp, "no-overlap.bin")),
		},
		{
			name:  "json",
			jsout: true,
			want:  `[{"day":0,"start":0,"stop":600,"samples":600,"begin":1528963200,"end":1528963205.99,"mean_mag":2.5,"min_mag":0,"max_mag":5,"mean_light":50,"mean_temp":20.75}]` + "\n",
		},
		{
			name: "bad-file",
			raw:  []byte("not a geneactiv file\n"),
			err: fmt.Errorf("could not decode %q: geneactiv: invalid header line 2: EOF",
				filepath.Join(tmp, "bad-file.bin"),
			),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fname := filepath.Join(tmp, tc.name+".bin")
			switch {
			case tc.raw == nil:
				genFile(t, fname)
			default:
				err := os.WriteFile(fname, tc.raw, 0644)
				if err != nil {
					t.Fatalf("could not write raw file: %+v", err)
				}
			}

			win, err := geneactiv.ParseWindows(tc.wspec)
			if err != nil {
				t.Fatalf("could not parse windows: %+v", err)
			}

			out := new(strings.Builder)
			err = process(out, fname, win, tc.sum, tc.jsout)
			switch {
			case err != nil && tc.err != nil:
				if got, want := err.Error(), tc.err.Error(); got != want {
					t.Fatalf("invalid error:\ngot= %v\nwant=%v\n", got, want)
				}
			case err != nil && tc.err == nil:
				t.Fatalf("could not gacv-dump: %+v", err)
			case err == nil && tc.err == nil:
				if got, want := out.String(), tc.want; got != want {
					t.Fatalf("invalid gacv-dump output:\ngot:\n%s\nwant:\n%s\n", got, want)
				}
			case err == nil && tc.err != nil:
				t.Fatalf("invalid error:\ngot= %v\nwant=%v\n", err, tc.err)
			}
		})
	}
}
