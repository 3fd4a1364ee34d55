// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geneactiv

import (
	"io"
	"os"

	"golang.org/x/xerrors"
)

// Read decodes a whole GENEActiv stream: the 59-line header, then block
// records until the declared page count is exhausted or the stream
// ends. On a block-fatal error Read returns the buffers decoded so far
// together with the error, so callers keep the data of prior blocks.
func Read(r io.Reader, win Windows) (*Data, Header, error) {
	var hdr Header
	dec := NewDecoder(r)
	if err := dec.DecodeHeader(&hdr); err != nil {
		return nil, hdr, err
	}
	data := NewData(&hdr, win, DefaultMaxDays)
	for i := 0; i < hdr.Pages; i++ {
		err := dec.DecodeBlock(&hdr, data)
		if err == nil {
			continue
		}
		if xerrors.Is(err, io.EOF) {
			break
		}
		dec.Finish(data)
		return data, hdr, err
	}
	dec.Finish(data)
	return data, hdr, nil
}

// ReadFile decodes the GENEActiv file at name.
func ReadFile(name string, win Windows) (*Data, Header, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Header{}, xerrors.Errorf("geneactiv: could not open %q: %w", name, err)
	}
	defer f.Close()
	return Read(f, win)
}
