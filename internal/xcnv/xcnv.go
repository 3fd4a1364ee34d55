// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert GENEActiv recordings to CSV
// and to slice day ranges into standalone recordings.
package xcnv // import "github.com/go-dmti/wear/internal/xcnv"
