// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import (
	"strconv"
	"time"

	"golang.org/x/xerrors"
)

// parseStamp extracts the UTC page time from the fixed-layout stamp
// line of a block record.
func parseStamp(line string) (time.Time, error) {
	if len(line) < stampMsec+stampMsecN {
		return time.Time{}, xerrors.Errorf("page-time line too short (%d bytes)", len(line))
	}
	year, err := stampField(line, stampYear, stampYearN)
	if err != nil {
		return time.Time{}, err
	}
	month, err := stampField(line, stampMon, stampMonN)
	if err != nil {
		return time.Time{}, err
	}
	day, err := stampField(line, stampDay, stampDayN)
	if err != nil {
		return time.Time{}, err
	}
	hour, err := stampField(line, stampHour, stampHourN)
	if err != nil {
		return time.Time{}, err
	}
	min, err := stampField(line, stampMin, stampMinN)
	if err != nil {
		return time.Time{}, err
	}
	sec, err := stampField(line, stampSec, stampSecN)
	if err != nil {
		return time.Time{}, err
	}
	msec, err := stampField(line, stampMsec, stampMsecN)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, msec*int(time.Millisecond), time.UTC), nil
}

func stampField(line string, beg, n int) (int, error) {
	v, err := strconv.Atoi(line[beg : beg+n])
	if err != nil {
		return 0, xerrors.Errorf("invalid page-time field %q", line[beg:beg+n])
	}
	return v, nil
}

// fillTime writes per-sample timestamps for one block, spaced 1/rate
// seconds from the page time t0.
func fillTime(dst []float64, t0 time.Time, rate float64) {
	sec := float64(t0.Unix()) + float64(t0.Nanosecond())/1e9
	for i := range dst {
		dst[i] = sec + float64(i)/rate
	}
}
