// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mmap provides a read-only memory-mapped file handle, used to
// decode large recordings without loading them into the heap.
package mmap // import "github.com/go-dmti/wear/internal/mmap"

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

var (
	errClosed = errors.New("mmap: closed")
)

type Handle struct {
	data []byte
}

// Open memory-maps the named file read-only.
func Open(name string) (*Handle, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("mmap: could not open %q: %w", name, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mmap: could not stat %q: %w", name, err)
	}
	size := fi.Size()
	if size == 0 {
		return HandleFrom(nil), nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("mmap: file %q too large", name)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: could not mmap %q: %w", name, err)
	}
	return HandleFrom(data), nil
}

func HandleFrom(data []byte) *Handle {
	h := &Handle{data: data}
	runtime.SetFinalizer(h, (*Handle).Close)
	return h
}

// Close unmaps the handle.
func (h *Handle) Close() error {
	if h == nil {
		return os.ErrInvalid
	}

	if h.data == nil {
		return nil
	}
	data := h.data
	h.data = nil
	runtime.SetFinalizer(h, nil)

	return unix.Munmap(data)
}

// Len returns the length of the underlying memory-mapped file.
func (h *Handle) Len() int {
	return len(h.data)
}

// At returns the byte at index i.
func (h *Handle) At(i int) byte {
	return h.data[i]
}

// NewReader returns a sequential reader over the mapped bytes. The
// reader is only valid until the handle is closed.
func (h *Handle) NewReader() *bytes.Reader {
	return bytes.NewReader(h.data)
}

// ReadAt implements the io.ReaderAt interface.
func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	if h == nil {
		return 0, os.ErrInvalid
	}

	if h.data == nil {
		return 0, errClosed
	}
	if off < 0 || int64(len(h.data)) < off {
		return 0, fmt.Errorf("mmap: invalid ReadAt offset %d", off)
	}
	n := copy(p, h.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

var (
	_ io.ReaderAt = (*Handle)(nil)
	_ io.Closer   = (*Handle)(nil)
)
