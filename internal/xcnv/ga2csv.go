// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"fmt"
	"log"

	"go-hep.org/x/hep/csvutil"

	"github.com/go-dmti/wear/geneactiv"
)

// GA2CSV writes the decoded samples of data as delimiter-separated
// rows: time, x, y, z, light, temperature. Timestamps keep the
// millisecond resolution of the recording.
func GA2CSV(tbl *csvutil.Table, data *geneactiv.Data, hdr *geneactiv.Header, msg *log.Logger) error {
	err := tbl.WriteHeader(fmt.Sprintf("# rate=%v Hz;time;ax;ay;az;light;temp", hdr.Rate))
	if err != nil {
		return fmt.Errorf("could not write CSV header: %w", err)
	}

	n := data.Len()
	for i := 0; i < n; i++ {
		if i%(100*geneactiv.SamplesPerBlock) == 0 {
			msg.Printf("processing sample %d/%d...", i, n)
		}
		acc := data.Accel[i]
		err = tbl.WriteRow(
			fmt.Sprintf("%.3f", data.Time[i]),
			acc[0], acc[1], acc[2],
			data.Light[i], data.Temp[i],
		)
		if err != nil {
			return fmt.Errorf("could not write CSV row %d: %w", i, err)
		}
	}

	return nil
}
