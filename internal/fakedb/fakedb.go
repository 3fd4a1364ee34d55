// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb holds types to fake an in-memory DB.
package fakedb // import "github.com/go-dmti/wear/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"sync"
)

var state struct {
	mu    sync.Mutex
	rows  Rows
	execs []Exec
	insID int64
}

// Exec records one statement executed against the fake DB.
type Exec struct {
	Query string
	Args  []driver.Value
}

// Run serves rows to every query issued by f and captures the
// statements f executes. Run serializes access to the fake DB: f must
// not call Run or Execs itself.
func Run(ctx context.Context, rows Rows, f func(ctx context.Context) error) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.rows = rows
	state.execs = nil
	state.insID = 0

	return f(ctx)
}

// Execs returns the statements executed during the last Run.
func Execs() []Exec {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.execs
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

// Open returns a new connection to the database.
func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

// Prepare returns a prepared statement, bound to this connection.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{query: query}, nil
}

func (c *Conn) Close() error {
	return nil
}

// Begin starts and returns a new transaction.
//
// Deprecated: Drivers should implement ConnBeginTx instead (or additionally).
func (c *Conn) Begin() (driver.Tx, error) {
	panic("not implemented")
}

type Stmt struct {
	query string
}

// Close closes the statement.
func (stmt *Stmt) Close() error {
	return nil
}

// NumInput returns -1: the fake does not sanity-check argument counts.
func (stmt *Stmt) NumInput() int {
	return -1
}

// Exec records the statement and its arguments, handing out increasing
// insert ids.
func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	vs := make([]driver.Value, len(args))
	copy(vs, args)
	state.execs = append(state.execs, Exec{Query: stmt.query, Args: vs})
	state.insID++
	return Result{id: state.insID}, nil
}

// Query serves a copy of the rows loaded by Run, so every query of one
// Run sees the full set.
func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	rows := state.rows
	return &rows, nil
}

type Result struct {
	id int64
}

func (r Result) LastInsertId() (int64, error) {
	return r.id, nil
}

func (r Result) RowsAffected() (int64, error) {
	return 1, nil
}

type Rows struct {
	Names  []string
	Values [][]driver.Value
}

// Columns returns the names of the columns.
func (rows *Rows) Columns() []string {
	return rows.Names
}

// Close closes the rows iterator.
func (rows *Rows) Close() error {
	return nil
}

// Next populates dest with the next row of data.
//
// Next returns io.EOF when there are no more rows.
func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Result = Result{}
	_ driver.Rows   = (*Rows)(nil)
)
