// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import "fmt"

// HeaderFormatError reports an unusable file header.
type HeaderFormatError struct {
	Line int // 1-based header line
	Err  error
}

func (e *HeaderFormatError) Error() string {
	return fmt.Sprintf("geneactiv: invalid header line %d: %v", e.Line, e.Err)
}

func (e *HeaderFormatError) Unwrap() error { return e.Err }

// MissingTimestampError reports a block record with no page-time line.
type MissingTimestampError struct {
	Seq int64
}

func (e *MissingTimestampError) Error() string {
	return fmt.Sprintf("geneactiv: block %d: missing page time", e.Seq)
}

// TruncatedBlockError reports a block record cut short by the end of
// the stream or by an under-sized payload line.
type TruncatedBlockError struct {
	Seq int64 // -1 when the stream ended before the sequence number
	Len int   // raw payload line length; -1 when the line is absent
}

func (e *TruncatedBlockError) Error() string {
	switch {
	case e.Seq < 0:
		return "geneactiv: truncated block record"
	case e.Len < 0:
		return fmt.Sprintf("geneactiv: block %d: truncated record", e.Seq)
	default:
		return fmt.Sprintf("geneactiv: block %d: truncated data line (%d bytes)", e.Seq, e.Len)
	}
}

// RateMismatchError reports a block whose sampling rate differs from
// the file rate after a correction was already applied.
type RateMismatchError struct {
	Seq       int64
	FileRate  float64
	BlockRate float64
}

func (e *RateMismatchError) Error() string {
	return fmt.Sprintf("geneactiv: block %d: sampling rate %v does not match file rate %v",
		e.Seq, e.BlockRate, e.FileRate,
	)
}

// SequenceError reports a block sequence number outside the sample
// buffers declared by the header.
type SequenceError struct {
	Seq   int64
	Pages int
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("geneactiv: block sequence %d out of range (%d pages)", e.Seq, e.Pages)
}

// RateWarning records a tolerated sampling-rate correction.
type RateWarning struct {
	Seq       int64   // block that triggered the correction
	FileRate  float64 // rate before the correction
	BlockRate float64 // rate adopted from the block record
}
