// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import "math"

// DaySummary aggregates one recorded day of decoded samples.
type DaySummary struct {
	Day       int     `json:"day"`
	Start     int     `json:"start"`
	Stop      int     `json:"stop"`
	Samples   int     `json:"samples"`
	Begin     float64 `json:"begin"` // UTC seconds of the first sample
	End       float64 `json:"end"`   // UTC seconds of the last sample
	MeanMag   float64 `json:"mean_mag"`
	MinMag    float64 `json:"min_mag"`
	MaxMag    float64 `json:"max_mag"`
	MeanLight float64 `json:"mean_light"`
	MeanTemp  float64 `json:"mean_temp"`
}

// Summaries computes per-day aggregates of the acceleration magnitude,
// light and temperature buffers.
func (data *Data) Summaries() []DaySummary {
	out := make([]DaySummary, 0, len(data.Days))
	for i, day := range data.Days {
		sum := DaySummary{
			Day:     i,
			Start:   day.Start,
			Stop:    day.Stop,
			Samples: day.Len(),
		}
		if sum.Samples > 0 {
			sum.Begin = data.Time[day.Start]
			sum.End = data.Time[day.Stop-1]
			sum.MinMag = math.Inf(+1)
			sum.MaxMag = math.Inf(-1)
			var mag, light, temp float64
			for j := day.Start; j < day.Stop; j++ {
				acc := data.Accel[j]
				m := math.Sqrt(acc[0]*acc[0] + acc[1]*acc[1] + acc[2]*acc[2])
				mag += m
				if m < sum.MinMag {
					sum.MinMag = m
				}
				if m > sum.MaxMag {
					sum.MaxMag = m
				}
				light += data.Light[j]
				temp += data.Temp[j]
			}
			n := float64(sum.Samples)
			sum.MeanMag = mag / n
			sum.MeanLight = light / n
			sum.MeanTemp = temp / n
		}
		out = append(out, sum)
	}
	return out
}
