// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geneactiv decodes GENEActiv .bin accelerometry files.
//
// A .bin file starts with a 59-line text header followed by block
// records of 300 samples each. Samples are hex-packed 12-bit values,
// three acceleration axes plus a light channel, with one temperature
// and one page time per block. Decoding reconstructs calibrated
// acceleration, light, temperature and per-sample UTC timestamps, and
// indexes the stream by calendar day and by configurable day windows.
package geneactiv // import "github.com/go-dmti/wear/geneactiv"

// Header holds the file-level recording parameters of a .bin file.
type Header struct {
	Rate      float64    // sampling rate (Hz); may be corrected once from a block record
	Gain      [3]float64 // per-axis calibration gain (x, y, z)
	Offset    [3]float64 // per-axis calibration offset (x, y, z)
	Volts     float64    // light calibration denominator
	Lux       float64    // light calibration numerator
	Pages     int        // declared number of block records
	Blocks    int64      // block slots covered so far (max sequence + 1)
	RateFixes int        // rate corrections applied (at most one)
}

// Samples returns the number of samples covered by the blocks decoded
// so far.
func (hdr *Header) Samples() int {
	return int(hdr.Blocks) * SamplesPerBlock
}
