// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import (
	"bufio"
	"io"
	"log"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Decoder reads GENEActiv data from an underlying text stream.
// Read errors stick: once a read fails, further reads are no-ops.
type Decoder struct {
	r *bufio.Reader

	// Msg, when non-nil, receives decode warnings (sampling-rate
	// corrections).
	Msg *log.Logger

	err   error
	warns []RateWarning
	days  *dayIndexer
}

// NewDecoder creates a decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Warnings returns the sampling-rate corrections tolerated so far.
func (dec *Decoder) Warnings() []RateWarning { return dec.warns }

// DecodeHeader reads the 59-line file header into hdr.
func (dec *Decoder) DecodeHeader(hdr *Header) error {
	var (
		vals = make([]float64, len(hdrLayout))
		next = 0
	)
	for line := 1; line <= headerLines; line++ {
		s := dec.readLine()
		if dec.err != nil {
			return &HeaderFormatError{Line: line, Err: dec.err}
		}
		if next == len(hdrLayout) || hdrLayout[next].line != line {
			continue
		}
		v, err := hdrLayout[next].parse(s)
		if err != nil {
			return &HeaderFormatError{Line: line, Err: err}
		}
		vals[next] = v
		next++
	}

	hdr.Rate = vals[0]
	hdr.Gain = [3]float64{vals[1], vals[3], vals[5]}
	hdr.Offset = [3]float64{vals[2], vals[4], vals[6]}
	hdr.Volts = vals[7]
	hdr.Lux = vals[8]
	hdr.Pages = int(vals[9])
	hdr.Blocks = 0
	hdr.RateFixes = 0
	return nil
}

// DecodeBlock reads one block record, storing its samples into data at
// the slot given by the block sequence number. A clean end of stream,
// with no bytes of a further record, yields io.EOF. On a block-fatal
// error the samples of previously decoded blocks remain valid in data.
func (dec *Decoder) DecodeBlock(hdr *Header, data *Data) error {
	dec.readLine() // record banner
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			return io.EOF
		}
		return dec.ioErr(-1)
	}
	dec.skip(1) // device serial code

	line := dec.readLine() // sequence number
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			return &TruncatedBlockError{Seq: -1, Len: -1}
		}
		return dec.ioErr(-1)
	}
	if len(line) <= seqCol {
		return xerrors.Errorf("geneactiv: invalid block sequence line %q", trim(line))
	}
	seq, err := atoi(line[seqCol:])
	if err != nil {
		return xerrors.Errorf("geneactiv: could not parse block sequence: %w", err)
	}
	beg := int(seq) * SamplesPerBlock
	if seq < 0 || beg+SamplesPerBlock > len(data.Time) {
		return &SequenceError{Seq: seq, Pages: hdr.Pages}
	}

	stamp := dec.readLine() // page time
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			return &MissingTimestampError{Seq: seq}
		}
		return dec.ioErr(seq)
	}
	t0, err := parseStamp(stamp)
	if err != nil {
		return xerrors.Errorf("geneactiv: block %d: %w", seq, err)
	}

	dec.skip(1) // unassigned

	line = dec.readLine() // temperature
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			return &TruncatedBlockError{Seq: seq, Len: -1}
		}
		return dec.ioErr(seq)
	}
	if len(line) <= tempCol {
		return xerrors.Errorf("geneactiv: invalid temperature line %q", trim(line))
	}
	temp, err := atof(line[tempCol:])
	if err != nil {
		return xerrors.Errorf("geneactiv: block %d: could not parse temperature: %w", seq, err)
	}

	dec.skip(2) // battery voltage, device status

	line = dec.readLine() // measurement frequency
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			return &TruncatedBlockError{Seq: seq, Len: -1}
		}
		return dec.ioErr(seq)
	}
	if len(line) <= rateCol {
		return xerrors.Errorf("geneactiv: invalid frequency line %q", trim(line))
	}
	rate, err := atof(line[rateCol:])
	if err != nil {
		return xerrors.Errorf("geneactiv: block %d: could not parse sampling rate: %w", seq, err)
	}
	if rate <= 0 {
		return xerrors.Errorf("geneactiv: block %d: invalid sampling rate %v", seq, rate)
	}
	if rate != hdr.Rate {
		if hdr.RateFixes > 0 {
			return &RateMismatchError{Seq: seq, FileRate: hdr.Rate, BlockRate: rate}
		}
		dec.warns = append(dec.warns, RateWarning{Seq: seq, FileRate: hdr.Rate, BlockRate: rate})
		if dec.Msg != nil {
			dec.Msg.Printf(
				"block %d: sampling rate %v differs from file rate %v, adopting block rate",
				seq, rate, hdr.Rate,
			)
		}
		hdr.Rate = rate
		hdr.RateFixes++
	}

	line = dec.readLine() // hex payload
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			return &TruncatedBlockError{Seq: seq, Len: -1}
		}
		return dec.ioErr(seq)
	}
	if len(line) < dataLineMin {
		return &TruncatedBlockError{Seq: seq, Len: len(line)}
	}

	if err := decodeSamples(hdr, data, beg, line[:dataChars], temp); err != nil {
		return xerrors.Errorf("geneactiv: block %d: %w", seq, err)
	}
	fillTime(data.Time[beg:beg+SamplesPerBlock], t0, hdr.Rate)

	if dec.days == nil {
		dec.days = newDayIndexer(data)
	}
	dec.days.update(data, t0, hdr.Rate, beg)

	if seq+1 > hdr.Blocks {
		hdr.Blocks = seq + 1
	}
	if n := beg + SamplesPerBlock; n > data.n {
		data.n = n
	}
	return nil
}

// Finish closes out the day and window index once the block loop ends.
// Read calls it automatically; callers driving DecodeBlock themselves
// must call it after the last block.
func (dec *Decoder) Finish(data *Data) {
	if dec.days != nil {
		dec.days.finish(data)
	}
}

// decodeSamples unpacks one block payload: 300 groups of 12 hex
// characters, each holding three 12-bit two's-complement acceleration
// fields and one 12-bit light field.
func decodeSamples(hdr *Header, data *Data, beg int, payload string, temp float64) error {
	for i := 0; i < SamplesPerBlock; i++ {
		off := i * 12
		for k := 0; k < 3; k++ {
			v, err := hex12(payload[off+3*k : off+3*k+3])
			if err != nil {
				return xerrors.Errorf("invalid sample %d: %w", i, err)
			}
			if v > 2047 {
				v -= 4096
			}
			data.Accel[beg+i][k] = (float64(v)*100 - hdr.Offset[k]) / hdr.Gain[k]
		}
		v, err := hex12(payload[off+9 : off+12])
		if err != nil {
			return xerrors.Errorf("invalid sample %d: %w", i, err)
		}
		data.Light[beg+i] = float64(v>>2) * (hdr.Lux / hdr.Volts)
		data.Temp[beg+i] = temp
	}
	return nil
}

func (f hdrField) parse(line string) (float64, error) {
	var v string
	switch {
	case f.col < 0:
		i := strings.IndexByte(line, ':')
		if i < 0 {
			return 0, xerrors.Errorf("missing %s value", f.name)
		}
		v = line[i+1:]
	case f.col >= len(line):
		return 0, xerrors.Errorf("line too short for %s (%d bytes)", f.name, len(line))
	default:
		v = line[f.col:]
	}
	n, err := atoi(v)
	if err != nil {
		return 0, xerrors.Errorf("could not parse %s: %w", f.name, err)
	}
	return float64(n), nil
}

// readLine returns the next line, terminator included. Like fgets(3),
// a final unterminated line is returned as-is; the error is recorded
// only when no bytes are left.
func (dec *Decoder) readLine() string {
	if dec.err != nil {
		return ""
	}
	s, err := dec.r.ReadString('\n')
	switch {
	case err == nil:
		return s
	case xerrors.Is(err, io.EOF) && s != "":
		return s
	default:
		dec.err = err
		return ""
	}
}

func (dec *Decoder) skip(n int) {
	for i := 0; i < n && dec.err == nil; i++ {
		dec.readLine()
	}
}

func (dec *Decoder) ioErr(seq int64) error {
	if seq < 0 {
		return xerrors.Errorf("geneactiv: could not read block record: %w", dec.err)
	}
	return xerrors.Errorf("geneactiv: could not read block %d: %w", seq, dec.err)
}

func trim(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// atoi parses the leading integer of s like strtol(3): leading blanks
// are skipped and trailing text is ignored.
func atoi(s string) (int64, error) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	return strconv.ParseInt(s[:i], 10, 64)
}

// atof parses the leading float of s like strtod(3).
func atof(s string) (float64, error) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && '0' <= s[k] && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	return strconv.ParseFloat(s[:i], 64)
}

func hex12(s string) (int, error) {
	v := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case '0' <= c && c <= '9':
			v = v<<4 + int(c-'0')
		case 'a' <= c && c <= 'f':
			v = v<<4 + int(c-'a') + 10
		case 'A' <= c && c <= 'F':
			v = v<<4 + int(c-'A') + 10
		default:
			return 0, xerrors.Errorf("invalid hex digit %q", c)
		}
	}
	return v, nil
}
