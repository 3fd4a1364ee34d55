// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import (
	"math"
	"time"
)

// tieEps absorbs float fuzz when a boundary lands exactly on a sample.
const tieEps = 1e-9

type winEdge struct {
	w, d int     // window definition, day record
	t    float64 // UTC seconds of the edge
	stop bool
}

// dayIndexer tracks calendar-day boundaries and day-window edges while
// blocks stream in. Blocks are assumed to arrive in time order, the
// order the device writes them.
type dayIndexer struct {
	open    bool
	day     time.Time // midnight of the open day (UTC)
	start   int       // sample index where the open day began
	count   int       // days opened so far
	pending []winEdge
}

func newDayIndexer(data *Data) *dayIndexer {
	return &dayIndexer{
		pending: make([]winEdge, 0, 2*data.win.Len()),
	}
}

// update indexes one block of SamplesPerBlock samples starting at
// sample index beg, recorded from t0 at the given rate.
func (ix *dayIndexer) update(data *Data, t0 time.Time, rate float64, beg int) {
	switch {
	case !ix.open:
		ix.openDay(data, dateOf(t0), beg)
	default:
		if day := dateOf(t0); day.After(ix.day) {
			// the boundary fell in a recording gap
			ix.closeDay(data, beg)
			ix.openDay(data, day, beg)
		}
	}

	tod := t0.Sub(ix.day).Seconds()
	for {
		j := int(math.Ceil((secPerDay-tod)*rate - tieEps))
		if j >= SamplesPerBlock {
			break
		}
		ix.closeDay(data, beg+j)
		ix.openDay(data, ix.day.Add(24*time.Hour), beg+j)
		tod -= secPerDay
	}

	var (
		t0s  = float64(t0.Unix()) + float64(t0.Nanosecond())/1e9
		tEnd = t0s + SamplesPerBlock/rate
		kept = ix.pending[:0]
	)
	for _, e := range ix.pending {
		if e.t >= tEnd {
			kept = append(kept, e)
			continue
		}
		span := &data.Wins[e.w][e.d]
		idx := sampleAt(t0s, beg, rate, e.t)
		switch {
		case e.stop:
			span.Stop = idx
		default:
			span.Start = idx
		}
	}
	ix.pending = kept
}

// finish closes the open day at the end of the decoded samples and
// clamps window edges the stream never reached.
func (ix *dayIndexer) finish(data *Data) {
	if ix.open {
		ix.closeDay(data, data.n)
		ix.open = false
	}
	for _, e := range ix.pending {
		span := &data.Wins[e.w][e.d]
		if e.stop && span.Start >= 0 {
			span.Stop = data.n
		}
		// a window whose start was never reached keeps the sentinel
	}
	ix.pending = ix.pending[:0]
}

func (ix *dayIndexer) openDay(data *Data, day time.Time, beg int) {
	ix.open = true
	ix.day = day
	ix.start = beg
	if ix.count < data.maxDays {
		var (
			d     = ix.count
			epoch = float64(day.Unix())
		)
		for w := range data.win.Bases {
			data.Wins[w] = append(data.Wins[w], Span{-1, -1})
			start := epoch + data.win.Bases[w]*3600
			stop := start + data.win.Periods[w]*3600
			ix.pending = append(ix.pending,
				winEdge{w: w, d: d, t: start},
				winEdge{w: w, d: d, t: stop, stop: true},
			)
		}
	}
	ix.count++
}

func (ix *dayIndexer) closeDay(data *Data, stop int) {
	if ix.count-1 < data.maxDays {
		data.Days = append(data.Days, Span{ix.start, stop})
	}
}

func sampleAt(t0 float64, beg int, rate, t float64) int {
	if t <= t0 {
		return beg
	}
	return beg + int(math.Ceil((t-t0)*rate-tieEps))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
