// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

const (
	// SamplesPerBlock is the number of samples stored in one block record.
	SamplesPerBlock = 300

	headerLines = 59            // lines in the file header
	dataChars   = 3600          // hex characters in a block payload
	dataLineMin = dataChars + 1 // raw payload line, terminator included

	secPerDay = 86400.0
)

// DefaultMaxDays bounds the day index of a decoded file.
const DefaultMaxDays = 32

// hdrField locates one header value. Values parse as leading integers;
// anything after the digits (units, etc) is ignored.
type hdrField struct {
	line int    // 1-based header line
	col  int    // byte column of the value; -1 takes the value after the first colon
	name string
}

var hdrLayout = []hdrField{
	{line: 20, col: -1, name: "sampling frequency"},
	{line: 48, col: -1, name: "x gain"},
	{line: 49, col: -1, name: "x offset"},
	{line: 50, col: -1, name: "y gain"},
	{line: 51, col: -1, name: "y offset"},
	{line: 52, col: -1, name: "z gain"},
	{line: 53, col: -1, name: "z offset"},
	{line: 54, col: 6, name: "volts"},
	{line: 55, col: 4, name: "lux"},
	{line: 58, col: 16, name: "page count"},
}

// block record value positions (byte columns within their lines).
const (
	seqCol  = 16 // "Sequence Number:"
	tempCol = 12 // "Temperature:"
	rateCol = 22 // "Measurement Frequency:"
)

// page-time stamp field positions (byte column, field width).
const (
	stampYear, stampYearN = 10, 4
	stampMon, stampMonN   = 15, 2
	stampDay, stampDayN   = 18, 2
	stampHour, stampHourN = 21, 2
	stampMin, stampMinN   = 24, 2
	stampSec, stampSecN   = 27, 2
	stampMsec, stampMsecN = 30, 3
)
