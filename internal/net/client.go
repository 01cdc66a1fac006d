// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"net"
	"sync"
	"time"

	"github.com/zyhnesmr/minidis/internal/transport"
)

// Client is one accepted connection: the framed transport plus the
// session state the command layer needs.
type Client struct {
	raw net.Conn
	tr  *transport.Conn

	id        uint64
	createdAt time.Time

	mu   sync.Mutex
	name string
	db   int
}

// NewClient wraps an accepted connection
func NewClient(raw net.Conn, id uint64) *Client {
	return &Client{
		raw:       raw,
		tr:        transport.New(raw),
		id:        id,
		createdAt: time.Now(),
	}
}

// Transport returns the framed connection
func (c *Client) Transport() *transport.Conn {
	return c.tr
}

// ID returns the connection ID
func (c *Client) ID() uint64 {
	return c.id
}

// RemoteAddr returns the peer address
func (c *Client) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// SetReadDeadline sets the read deadline on the underlying socket
func (c *Client) SetReadDeadline(t time.Time) error {
	return c.raw.SetReadDeadline(t)
}

// Name returns the client name set via CLIENT SETNAME
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// SetName sets the client name
func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// DB returns the selected database index
func (c *Client) DB() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

// SetDB selects a database
func (c *Client) SetDB(db int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
}

// Close closes the underlying socket
func (c *Client) Close() error {
	return c.raw.Close()
}
