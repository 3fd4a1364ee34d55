// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import (
	"bytes"
	"io"
	"log"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/xerrors"
)

var blockTime = time.Date(2018, 6, 14, 8, 0, 0, 0, time.UTC)

func testHeader(pages int) Header {
	return Header{
		Rate:   100,
		Gain:   [3]float64{100, 100, 100},
		Offset: [3]float64{0, 0, 0},
		Volts:  100,
		Lux:    1000,
		Pages:  pages,
	}
}

func fileWith(t *testing.T, hdr Header, blks ...Block) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	if err := enc.EncodeHeader(&hdr); err != nil {
		t.Fatalf("could not encode header: %+v", err)
	}
	for i := range blks {
		if err := enc.EncodeBlock(&blks[i]); err != nil {
			t.Fatalf("could not encode block %d: %+v", i, err)
		}
	}
	return buf.Bytes()
}

func rawPayload(t *testing.T, sample [4]uint16) string {
	t.Helper()
	codes := make([]uint16, 0, 4*SamplesPerBlock)
	for i := 0; i < SamplesPerBlock; i++ {
		codes = append(codes, sample[0], sample[1], sample[2], sample[3])
	}
	payload, err := PackRaw(codes)
	if err != nil {
		t.Fatalf("could not pack payload: %+v", err)
	}
	return payload
}

func zeroPayload() string { return strings.Repeat("0", dataChars) }

// keepLines truncates raw after its n-th line.
func keepLines(raw []byte, n int) []byte {
	lines := strings.SplitAfter(string(raw), "\n")
	return []byte(strings.Join(lines[:n], ""))
}

// setLine replaces the 1-based line of raw.
func setLine(raw []byte, line int, text string) []byte {
	lines := strings.SplitAfter(string(raw), "\n")
	lines[line-1] = text + "\n"
	return []byte(strings.Join(lines, ""))
}

func TestDecodeHeader(t *testing.T) {
	valid := fileWith(t, testHeader(2))
	for _, tc := range []struct {
		name string
		raw  []byte
		hdr  Header
		want error
	}{
		{
			name: "valid",
			raw:  valid,
			hdr:  testHeader(2),
		},
		{
			name: "empty",
			raw:  nil,
			want: &HeaderFormatError{Line: 1, Err: io.EOF},
		},
		{
			name: "cut-mid-header",
			raw:  keepLines(valid, 30),
			want: &HeaderFormatError{Line: 31, Err: io.EOF},
		},
		{
			name: "bad-frequency",
			raw:  setLine(valid, 20, "Measurement Frequency:fast Hz"),
			want: &HeaderFormatError{
				Line: 20,
				Err: xerrors.Errorf("could not parse sampling frequency: %w",
					&strconv.NumError{Func: "ParseInt", Num: "", Err: strconv.ErrSyntax},
				),
			},
		},
		{
			name: "missing-gain-value",
			raw:  setLine(valid, 48, "x gain"),
			want: &HeaderFormatError{Line: 48, Err: xerrors.New("missing x gain value")},
		},
		{
			name: "short-volts-line",
			raw:  setLine(valid, 54, "Volt"),
			want: &HeaderFormatError{Line: 54, Err: xerrors.New("line too short for volts (5 bytes)")},
		},
		{
			name: "bad-page-count",
			raw:  setLine(valid, 58, "Number of Pages:n/a"),
			want: &HeaderFormatError{
				Line: 58,
				Err: xerrors.Errorf("could not parse page count: %w",
					&strconv.NumError{Func: "ParseInt", Num: "", Err: strconv.ErrSyntax},
				),
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var hdr Header
			err := NewDecoder(bytes.NewReader(tc.raw)).DecodeHeader(&hdr)
			switch {
			case err != nil && tc.want == nil:
				t.Fatalf("could not decode header: %+v", err)
			case err == nil && tc.want == nil:
				if got, want := hdr, tc.hdr; !reflect.DeepEqual(got, want) {
					t.Fatalf("invalid header:\ngot= %#v\nwant=%#v", got, want)
				}
			case err != nil && tc.want != nil:
				if got, want := err.Error(), tc.want.Error(); got != want {
					t.Fatalf("invalid error:\ngot: %s\nwant:%s", got, want)
				}
			case err == nil && tc.want != nil:
				t.Fatalf("expected an error: %+v", tc.want)
			}
		})
	}
}

func TestRead(t *testing.T) {
	raw := fileWith(t, testHeader(2),
		Block{Seq: 0, Time: blockTime, Temp: 21.5, Rate: 100, Data: rawPayload(t, [4]uint16{0x800, 0x7ff, 0xfff, 0xfff})},
		Block{Seq: 1, Time: blockTime.Add(3 * time.Second), Temp: 22.5, Rate: 100, Data: zeroPayload()},
	)

	data, hdr, err := Read(bytes.NewReader(raw), Windows{})
	if err != nil {
		t.Fatalf("could not read stream: %+v", err)
	}
	if got, want := data.Len(), 2*SamplesPerBlock; got != want {
		t.Fatalf("invalid number of samples: got=%d, want=%d", got, want)
	}
	if got, want := hdr.Blocks, int64(2); got != want {
		t.Fatalf("invalid block count: got=%d, want=%d", got, want)
	}
	if got, want := hdr.Samples(), data.Len(); got != want {
		t.Fatalf("invalid header sample count: got=%d, want=%d", got, want)
	}

	// 12-bit two's complement: 0x800 wraps to -2048, 0x7ff stays +2047,
	// 0xfff wraps to -1. Unit gain maps raw codes straight to values.
	if got, want := data.Accel[0], [3]float64{-2048, 2047, -1}; got != want {
		t.Fatalf("invalid accel sample: got=%v, want=%v", got, want)
	}
	// light drops two bits and scales by lux/volts.
	if got, want := data.Light[0], float64(0xfff>>2)*10; got != want {
		t.Fatalf("invalid light sample: got=%v, want=%v", got, want)
	}
	if got, want := data.Temp[0], 21.5; got != want {
		t.Fatalf("invalid temperature: got=%v, want=%v", got, want)
	}
	if got, want := data.Temp[SamplesPerBlock-1], 21.5; got != want {
		t.Fatalf("temperature not replicated: got=%v, want=%v", got, want)
	}
	if got, want := data.Temp[SamplesPerBlock], 22.5; got != want {
		t.Fatalf("invalid block-1 temperature: got=%v, want=%v", got, want)
	}

	epoch := float64(blockTime.Unix())
	if got, want := data.Time[0], epoch; got != want {
		t.Fatalf("invalid first timestamp: got=%v, want=%v", got, want)
	}
	if got, want := data.Time[1], epoch+1.0/100; got != want {
		t.Fatalf("invalid timestamp spacing: got=%v, want=%v", got, want)
	}
	if got, want := data.Time[SamplesPerBlock], epoch+3; got != want {
		t.Fatalf("invalid block-1 timestamp: got=%v, want=%v", got, want)
	}

	if got, want := data.Days, []Span{{0, 2 * SamplesPerBlock}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid day index: got=%v, want=%v", got, want)
	}
}

func TestReadSequenceGap(t *testing.T) {
	raw := fileWith(t, testHeader(3),
		Block{Seq: 0, Time: blockTime, Temp: 20, Rate: 100, Data: rawPayload(t, [4]uint16{1, 2, 3, 4})},
		Block{Seq: 2, Time: blockTime.Add(6 * time.Second), Temp: 20, Rate: 100, Data: rawPayload(t, [4]uint16{1, 2, 3, 4})},
	)

	data, hdr, err := Read(bytes.NewReader(raw), Windows{})
	if err != nil {
		t.Fatalf("could not read stream: %+v", err)
	}
	if got, want := hdr.Blocks, int64(3); got != want {
		t.Fatalf("invalid block count: got=%d, want=%d", got, want)
	}
	if got, want := data.Len(), 3*SamplesPerBlock; got != want {
		t.Fatalf("invalid number of samples: got=%d, want=%d", got, want)
	}
	// the missing block leaves a zero-filled hole.
	if got, want := data.Accel[SamplesPerBlock], ([3]float64{}); got != want {
		t.Fatalf("hole not zero-filled: got=%v", got)
	}
	if got, want := data.Time[SamplesPerBlock], 0.0; got != want {
		t.Fatalf("hole timestamp not zero: got=%v", got)
	}
}

func TestReadErrors(t *testing.T) {
	var (
		one = fileWith(t, testHeader(1),
			Block{Seq: 0, Time: blockTime, Temp: 20, Rate: 100, Data: zeroPayload()},
		)
		two = fileWith(t, testHeader(2),
			Block{Seq: 0, Time: blockTime, Temp: 20, Rate: 100, Data: zeroPayload()},
			Block{Seq: 1, Time: blockTime.Add(3 * time.Second), Temp: 20, Rate: 100, Data: zeroPayload()},
		)
	)

	for _, tc := range []struct {
		name string
		raw  []byte
		want error
		n    int // samples preserved
	}{
		{
			name: "missing-timestamp",
			raw:  keepLines(two, headerLines+10+3),
			want: &MissingTimestampError{Seq: 1},
			n:    SamplesPerBlock,
		},
		{
			name: "cut-after-banner",
			raw:  keepLines(two, headerLines+10+1),
			want: &TruncatedBlockError{Seq: -1, Len: -1},
			n:    SamplesPerBlock,
		},
		{
			name: "cut-before-temperature",
			raw:  keepLines(two, headerLines+10+5),
			want: &TruncatedBlockError{Seq: 1, Len: -1},
			n:    SamplesPerBlock,
		},
		{
			name: "cut-before-payload",
			raw:  keepLines(two, headerLines+10+9),
			want: &TruncatedBlockError{Seq: 1, Len: -1},
			n:    SamplesPerBlock,
		},
		{
			name: "short-payload",
			raw:  setLine(one, headerLines+10, zeroPayload()[:dataChars-1]),
			want: &TruncatedBlockError{Seq: 0, Len: dataChars},
			n:    0,
		},
		{
			name: "payload-without-terminator",
			raw:  one[:len(one)-1],
			want: &TruncatedBlockError{Seq: 0, Len: dataChars},
			n:    0,
		},
		{
			name: "sequence-out-of-range",
			raw: fileWith(t, testHeader(1),
				Block{Seq: 5, Time: blockTime, Temp: 20, Rate: 100, Data: zeroPayload()},
			),
			want: &SequenceError{Seq: 5, Pages: 1},
			n:    0,
		},
		{
			name: "invalid-hex-digit",
			raw: fileWith(t, testHeader(1),
				Block{Seq: 0, Time: blockTime, Temp: 20, Rate: 100, Data: "00x" + strings.Repeat("0", dataChars-3)},
			),
			want: xerrors.Errorf("geneactiv: block 0: invalid sample 0: invalid hex digit %q", byte('x')),
			n:    0,
		},
		{
			name: "bad-temperature",
			raw:  setLine(one, headerLines+6, "Temperature:warm"),
			want: xerrors.Errorf("geneactiv: block 0: could not parse temperature: %w",
				&strconv.NumError{Func: "ParseFloat", Num: "", Err: strconv.ErrSyntax},
			),
			n: 0,
		},
		{
			name: "rate-mismatch-after-fix",
			raw: fileWith(t, testHeader(3),
				Block{Seq: 0, Time: blockTime, Temp: 20, Rate: 100, Data: zeroPayload()},
				Block{Seq: 1, Time: blockTime.Add(3 * time.Second), Temp: 20, Rate: 85, Data: zeroPayload()},
				Block{Seq: 2, Time: blockTime.Add(6 * time.Second), Temp: 20, Rate: 100, Data: zeroPayload()},
			),
			want: &RateMismatchError{Seq: 2, FileRate: 85, BlockRate: 100},
			n:    2 * SamplesPerBlock,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data, _, err := Read(bytes.NewReader(tc.raw), Windows{})
			if err == nil {
				t.Fatalf("expected an error: %+v", tc.want)
			}
			if got, want := err.Error(), tc.want.Error(); got != want {
				t.Fatalf("invalid error:\ngot: %s\nwant:%s", got, want)
			}
			if got, want := data.Len(), tc.n; got != want {
				t.Fatalf("invalid preserved samples: got=%d, want=%d", got, want)
			}
		})
	}
}

func TestDecoderRateFix(t *testing.T) {
	raw := fileWith(t, testHeader(2),
		Block{Seq: 0, Time: blockTime, Temp: 20, Rate: 100, Data: zeroPayload()},
		Block{Seq: 1, Time: blockTime.Add(3 * time.Second), Temp: 20, Rate: 85, Data: zeroPayload()},
	)

	var (
		dec = NewDecoder(bytes.NewReader(raw))
		buf = new(bytes.Buffer)
		hdr Header
	)
	dec.Msg = log.New(buf, "", 0)
	if err := dec.DecodeHeader(&hdr); err != nil {
		t.Fatalf("could not decode header: %+v", err)
	}
	data := NewData(&hdr, Windows{}, 0)
	for i := 0; i < hdr.Pages; i++ {
		if err := dec.DecodeBlock(&hdr, data); err != nil {
			t.Fatalf("could not decode block %d: %+v", i, err)
		}
	}
	dec.Finish(data)

	if got, want := hdr.Rate, 85.0; got != want {
		t.Fatalf("rate not corrected: got=%v, want=%v", got, want)
	}
	if got, want := hdr.RateFixes, 1; got != want {
		t.Fatalf("invalid number of rate fixes: got=%d, want=%d", got, want)
	}
	if got, want := dec.Warnings(), []RateWarning{{Seq: 1, FileRate: 100, BlockRate: 85}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid warnings: got=%v, want=%v", got, want)
	}
	if got, want := buf.String(), "block 1: sampling rate 85 differs from file rate 100, adopting block rate\n"; got != want {
		t.Fatalf("invalid warning log:\ngot: %q\nwant:%q", got, want)
	}

	// block 1 timestamps use the corrected rate.
	var (
		beg = SamplesPerBlock
		sec = float64(blockTime.Add(3 * time.Second).Unix())
	)
	if got, want := data.Time[beg+1], sec+1.0/85; got != want {
		t.Fatalf("invalid corrected timestamp: got=%v, want=%v", got, want)
	}

	// a further block is clean EOF.
	if got, want := dec.DecodeBlock(&hdr, data), io.EOF; got != want {
		t.Fatalf("invalid end of stream: got=%v, want=%v", got, want)
	}
}
