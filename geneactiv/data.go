// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import (
	"fmt"
	"strings"

	"golang.org/x/xerrors"
)

// Windows defines day windows by start hour (base) and duration in
// hours (period). A base of 8 with a period of 12 indexes 8am to 8pm;
// base 8 with period 24 indexes 8am to 8am the next day.
type Windows struct {
	Bases   []float64
	Periods []float64
}

// NewWindows validates a set of day-window definitions: bases must lie
// in [0, 24) and periods in (0, 24]. An empty set disables windowing.
func NewWindows(bases, periods []float64) (Windows, error) {
	if len(bases) != len(periods) {
		return Windows{}, xerrors.Errorf("geneactiv: mismatched windows (%d bases, %d periods)",
			len(bases), len(periods),
		)
	}
	for i, base := range bases {
		if base < 0 || base >= 24 {
			return Windows{}, xerrors.Errorf("geneactiv: invalid window base %v (not in [0, 24))", base)
		}
		if period := periods[i]; period <= 0 || period > 24 {
			return Windows{}, xerrors.Errorf("geneactiv: invalid window period %v (not in (0, 24])", period)
		}
	}
	return Windows{Bases: bases, Periods: periods}, nil
}

// ParseWindows builds day windows from a comma-separated list of
// "base:period" pairs in hours, e.g. "0:24" or "8:12,20:10".
// The empty string disables windowing.
func ParseWindows(spec string) (Windows, error) {
	if spec == "" {
		return Windows{}, nil
	}
	var (
		bases   []float64
		periods []float64
	)
	for _, tok := range strings.Split(spec, ",") {
		var base, period float64
		_, err := fmt.Sscanf(tok, "%g:%g", &base, &period)
		if err != nil {
			return Windows{}, xerrors.Errorf("geneactiv: could not parse window %q: %w", tok, err)
		}
		bases = append(bases, base)
		periods = append(periods, period)
	}
	return NewWindows(bases, periods)
}

// Len returns the number of window definitions.
func (win Windows) Len() int { return len(win.Bases) }

// Span is a half-open range of sample indices. Windows that never
// overlap the recording keep the {-1, -1} sentinel.
type Span struct {
	Start int
	Stop  int
}

// Valid reports whether the span was resolved against the recording.
func (s Span) Valid() bool { return s.Start >= 0 && s.Stop >= s.Start }

// Len returns the number of samples the span covers.
func (s Span) Len() int {
	if !s.Valid() {
		return 0
	}
	return s.Stop - s.Start
}

// Data holds the decoded sample buffers of one file. All buffers are
// sized from the declared page count at construction; decoding never
// grows them. Holes left by missing block sequences stay zero.
type Data struct {
	Time  []float64    // UTC seconds per sample
	Accel [][3]float64 // calibrated acceleration (g)
	Light []float64    // light level (lux)
	Temp  []float64    // near-body temperature (deg C), constant per block
	Days  []Span       // calendar-day ranges, in recording order
	Wins  [][]Span     // per window definition, one range per recorded day

	win     Windows
	maxDays int
	n       int // samples covered by decoded blocks
}

// NewData allocates the sample buffers for a decoded header. A maxDays
// of zero or less selects DefaultMaxDays.
func NewData(hdr *Header, win Windows, maxDays int) *Data {
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	n := hdr.Pages * SamplesPerBlock
	data := &Data{
		Time:    make([]float64, n),
		Accel:   make([][3]float64, n),
		Light:   make([]float64, n),
		Temp:    make([]float64, n),
		Days:    make([]Span, 0, maxDays),
		Wins:    make([][]Span, win.Len()),
		win:     win,
		maxDays: maxDays,
	}
	for w := range data.Wins {
		data.Wins[w] = make([]Span, 0, maxDays)
	}
	return data
}

// Len returns the number of samples covered by the blocks decoded so
// far.
func (data *Data) Len() int { return data.n }

// Windows returns the window definitions the day index was built with.
func (data *Data) Windows() Windows { return data.win }
