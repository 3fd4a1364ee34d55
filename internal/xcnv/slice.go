// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/go-dmti/wear/geneactiv"
)

// SliceDays re-encodes the blocks covering the day records [from, to)
// of data as a standalone recording. Slices align to block boundaries,
// so a day starting mid-block carries the pre-midnight samples of its
// first block.
func SliceDays(w io.Writer, hdr *geneactiv.Header, data *geneactiv.Data, from, to int, msg *log.Logger) error {
	if from < 0 || to > len(data.Days) || from >= to {
		return fmt.Errorf("invalid day range [%d, %d) (%d days)", from, to, len(data.Days))
	}
	var (
		beg = data.Days[from].Start / geneactiv.SamplesPerBlock
		end = (data.Days[to-1].Stop + geneactiv.SamplesPerBlock - 1) / geneactiv.SamplesPerBlock
	)

	shdr := *hdr
	shdr.Pages = end - beg
	enc := geneactiv.NewEncoder(w)
	if err := enc.EncodeHeader(&shdr); err != nil {
		return fmt.Errorf("could not encode header: %w", err)
	}

	for i := beg; i < end; i++ {
		if (i-beg)%100 == 0 {
			msg.Printf("processing block %d/%d...", i-beg, end-beg)
		}
		var (
			lo  = i * geneactiv.SamplesPerBlock
			hi  = lo + geneactiv.SamplesPerBlock
			blk = geneactiv.Block{
				Seq:  int64(i - beg),
				Time: stampOf(data.Time[lo]),
				Temp: data.Temp[lo],
				Rate: hdr.Rate,
			}
		)
		if err := blk.SetSamples(hdr, data.Accel[lo:hi], data.Light[lo:hi]); err != nil {
			return fmt.Errorf("could not pack block %d: %w", i-beg, err)
		}
		if err := enc.EncodeBlock(&blk); err != nil {
			return fmt.Errorf("could not encode block %d: %w", i-beg, err)
		}
	}

	return nil
}

// stampOf reconstructs a block page time from its first sample
// timestamp, at millisecond resolution.
func stampOf(ts float64) time.Time {
	sec := math.Floor(ts)
	ms := math.Round((ts - sec) * 1e3)
	return time.Unix(int64(sec), int64(ms)*int64(time.Millisecond)).UTC()
}
