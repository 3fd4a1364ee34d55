// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package movstat provides moving-window statistics over sample series,
// the building blocks of epoch-level activity metrics.
package movstat // import "github.com/go-dmti/wear/movstat"

import (
	"sort"

	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/stat"
)

// Median computes the centered moving median of src over an odd window.
// Edges behave as if src were zero-padded by window/2 samples on both
// sides, so the output has the same length as src. A nil dst allocates
// the output; otherwise dst is filled and returned.
func Median(dst, src []float64, window int) ([]float64, error) {
	if window <= 0 || window%2 == 0 {
		return nil, xerrors.Errorf("movstat: invalid window %d (must be odd and positive)", window)
	}
	if dst == nil {
		dst = make([]float64, len(src))
	}
	if len(dst) != len(src) {
		return nil, xerrors.Errorf("movstat: invalid output length %d (want %d)", len(dst), len(src))
	}

	var (
		half = window / 2
		buf  = make([]float64, 0, window)
	)
	for i := range src {
		buf = buf[:0]
		for j := i - half; j <= i+half; j++ {
			switch {
			case j < 0 || j >= len(src):
				buf = append(buf, 0)
			default:
				buf = append(buf, src[j])
			}
		}
		sort.Float64s(buf)
		dst[i] = buf[half]
	}
	return dst, nil
}

// Mean computes means over windows of length window starting every skip
// samples.
func Mean(dst, src []float64, window, skip int) ([]float64, error) {
	return roll(dst, src, window, skip, func(xs []float64) float64 {
		return stat.Mean(xs, nil)
	})
}

// StdDev computes sample standard deviations over windows of length
// window starting every skip samples.
func StdDev(dst, src []float64, window, skip int) ([]float64, error) {
	return roll(dst, src, window, skip, func(xs []float64) float64 {
		return stat.StdDev(xs, nil)
	})
}

// Skew computes bias-corrected sample skewnesses over windows of length
// window starting every skip samples.
func Skew(dst, src []float64, window, skip int) ([]float64, error) {
	return roll(dst, src, window, skip, func(xs []float64) float64 {
		return stat.Skew(xs, nil)
	})
}

// Kurtosis computes excess kurtoses, zero for a normal distribution,
// over windows of length window starting every skip samples.
func Kurtosis(dst, src []float64, window, skip int) ([]float64, error) {
	return roll(dst, src, window, skip, func(xs []float64) float64 {
		return stat.ExKurtosis(xs, nil)
	})
}

func roll(dst, src []float64, window, skip int, f func([]float64) float64) ([]float64, error) {
	switch {
	case window <= 0:
		return nil, xerrors.Errorf("movstat: invalid window %d", window)
	case skip <= 0:
		return nil, xerrors.Errorf("movstat: invalid skip %d", skip)
	case window > len(src):
		return nil, xerrors.Errorf("movstat: window %d exceeds %d samples", window, len(src))
	}

	n := (len(src)-window)/skip + 1
	if dst == nil {
		dst = make([]float64, n)
	}
	if len(dst) != n {
		return nil, xerrors.Errorf("movstat: invalid output length %d (want %d)", len(dst), n)
	}
	for i := range dst {
		beg := i * skip
		dst[i] = f(src[beg : beg+window])
	}
	return dst, nil
}
