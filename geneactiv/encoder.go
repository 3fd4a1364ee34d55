// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import (
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/xerrors"
)

const deviceSerial = "046966"

// Block is one encodable block record: 300 samples packed as 3600 hex
// characters, with the block metadata around them.
type Block struct {
	Seq  int64
	Time time.Time // page time (UTC)
	Temp float64
	Rate float64
	Data string // 3600-character hex payload
}

// SetSamples fills the block payload from calibrated samples, inverting
// the calibration of hdr. The light channel loses its two low bits.
func (blk *Block) SetSamples(hdr *Header, accel [][3]float64, light []float64) error {
	if len(accel) != SamplesPerBlock || len(light) != SamplesPerBlock {
		return xerrors.Errorf("geneactiv: invalid sample count (accel=%d, light=%d)",
			len(accel), len(light),
		)
	}
	codes := make([]uint16, 0, 4*SamplesPerBlock)
	for i := range accel {
		for k := 0; k < 3; k++ {
			raw := int(math.Round((accel[i][k]*hdr.Gain[k] + hdr.Offset[k]) / 100))
			if raw < -2048 {
				raw = -2048
			}
			if raw > 2047 {
				raw = 2047
			}
			codes = append(codes, uint16(raw&0xfff))
		}
		lum := 0
		if hdr.Lux > 0 && hdr.Volts > 0 {
			lum = int(math.Round(light[i]*hdr.Volts/hdr.Lux)) << 2
		}
		if lum < 0 {
			lum = 0
		}
		if lum > 0xfff {
			lum = 0xfff
		}
		codes = append(codes, uint16(lum))
	}
	payload, err := PackRaw(codes)
	if err != nil {
		return err
	}
	blk.Data = payload
	return nil
}

// PackRaw packs 12-bit codes, four per sample (x, y, z, light), into
// the hex payload of a block record.
func PackRaw(codes []uint16) (string, error) {
	if len(codes) != 4*SamplesPerBlock {
		return "", xerrors.Errorf("geneactiv: invalid number of codes %d", len(codes))
	}
	const digits = "0123456789abcdef"
	buf := make([]byte, 0, dataChars)
	for _, v := range codes {
		if v > 0xfff {
			return "", xerrors.Errorf("geneactiv: code 0x%x overflows 12 bits", v)
		}
		buf = append(buf, digits[v>>8&0xf], digits[v>>4&0xf], digits[v&0xf])
	}
	return string(buf), nil
}

// Encoder writes GENEActiv data to an output stream in the .bin text
// layout the Decoder reads.
type Encoder struct {
	w   io.Writer
	err error
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// EncodeHeader writes the 59-line file header for hdr. The sampling
// rate, calibration and light constants are written as integers, the
// form the header carries on device.
func (enc *Encoder) EncodeHeader(hdr *Header) error {
	if hdr == nil {
		return nil
	}
	for _, line := range headerText(hdr) {
		enc.printf("%s\n", line)
	}
	if enc.err != nil {
		return xerrors.Errorf("geneactiv: could not write header: %w", enc.err)
	}
	return nil
}

// EncodeBlock writes one block record.
func (enc *Encoder) EncodeBlock(blk *Block) error {
	if blk == nil {
		return nil
	}
	if len(blk.Data) != dataChars {
		return xerrors.Errorf("geneactiv: invalid block payload length %d", len(blk.Data))
	}
	enc.printf("Recorded Data\n")
	enc.printf("Device Unique Serial Code:%s\n", deviceSerial)
	enc.printf("Sequence Number:%d\n", blk.Seq)
	enc.printf("Page Time:%s\n", formatStamp(blk.Time.UTC()))
	enc.printf("Unassigned:\n")
	enc.printf("Temperature:%.1f\n", blk.Temp)
	enc.printf("Battery voltage:4.0740\n")
	enc.printf("Device Status:Recording\n")
	enc.printf("Measurement Frequency:%.1f\n", blk.Rate)
	enc.printf("%s\n", blk.Data)
	if enc.err != nil {
		return xerrors.Errorf("geneactiv: could not write block %d: %w", blk.Seq, enc.err)
	}
	return nil
}

func (enc *Encoder) printf(format string, args ...interface{}) {
	if enc.err != nil {
		return
	}
	_, enc.err = fmt.Fprintf(enc.w, format, args...)
}

func formatStamp(t time.Time) string {
	return fmt.Sprintf("%s:%03d", t.Format("2006-01-02 15:04:05"), t.Nanosecond()/int(time.Millisecond))
}

// headerText lays out the 59 header lines for hdr. Only the lines the
// decoder reads carry live values; the rest is fixed filler.
func headerText(hdr *Header) []string {
	return []string{
		"Device Identity",
		"Device Unique Serial Code:" + deviceSerial,
		"Device Type:GENEActiv",
		"Device Model:1.1",
		"Device Firmware Version:Ver06.17",
		"Calibration Date:2018-06-01 09:00:00:000",
		"",
		"Device Capabilities",
		"Accelerometer Range:-8 to 8",
		"Accelerometer Resolution:0.0039",
		"Accelerometer Units:g",
		"Light Meter Range:0 to 20000",
		"Light Meter Resolution:5",
		"Light Meter Units:lux",
		"Temperature Sensor Range:0 to 70",
		"Temperature Sensor Resolution:0.1",
		"Temperature Sensor Units:deg. C",
		"",
		"Configuration Info",
		fmt.Sprintf("Measurement Frequency:%d Hz", int(hdr.Rate)), // line 20
		"Measurement Period:7 Days",
		"Start Time:2018-06-14 08:00:00:000",
		"Time Zone:GMT +00:00",
		"",
		"Trial Info",
		"Study Centre:",
		"Study Code:",
		"Investigator ID:",
		"Exercise Type:",
		"Config Operator ID:",
		"Config Time:2018-06-13 16:00:00:000",
		"Config Notes:",
		"Extract Operator ID:",
		"Extract Time:2018-06-21 10:00:00:000",
		"Extract Notes:",
		"",
		"Subject Info",
		"Device Location Code:left wrist",
		"Subject Code:",
		"Date of Birth:1990-01-01",
		"Sex:",
		"Height:",
		"Weight:",
		"Handedness Code:",
		"Subject Notes:",
		"",
		"Calibration Data",
		fmt.Sprintf("x gain:%d", int(hdr.Gain[0])),   // line 48
		fmt.Sprintf("x offset:%d", int(hdr.Offset[0])),
		fmt.Sprintf("y gain:%d", int(hdr.Gain[1])),
		fmt.Sprintf("y offset:%d", int(hdr.Offset[1])),
		fmt.Sprintf("z gain:%d", int(hdr.Gain[2])),
		fmt.Sprintf("z offset:%d", int(hdr.Offset[2])),
		fmt.Sprintf("Volts:%d", int(hdr.Volts)), // line 54
		fmt.Sprintf("Lux:%d", int(hdr.Lux)),     // line 55
		"",
		"Memory Status",
		fmt.Sprintf("Number of Pages:%d", hdr.Pages), // line 58
		"",
	}
}
