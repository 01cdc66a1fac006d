// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport converts a raw byte stream into a sequence of RESP
// units and back. It owns the buffering needed to reassemble units from
// arbitrarily chunked socket reads; it knows nothing about what the
// units mean.
package transport

import (
	"bufio"
	"errors"
	"io"
	"strconv"

	"github.com/zyhnesmr/minidis/internal/protocol/resp"
)

const initialBufferSize = 4096

var (
	// ErrResetMidFrame is returned when the peer closes the stream
	// while a partial unit is still buffered. Distinct from io.EOF so
	// callers can account for it separately.
	ErrResetMidFrame = errors.New("connection reset mid-frame")

	// ErrUnsupportedWrite is returned by WriteUnit for aggregate
	// units. It indicates a caller defect, not a network condition;
	// nothing is written to the stream.
	ErrUnsupportedWrite = errors.New("aggregate unit cannot be written")
)

// Conn is a framed connection over one duplex byte stream. It is owned
// by a single goroutine at a time: ReadUnit and WriteUnit must not be
// invoked concurrently.
type Conn struct {
	rwc    io.ReadWriteCloser
	writer *bufio.Writer

	// buf[:filled] holds bytes read from the stream but not yet
	// consumed by a decoded unit; buf[filled:] is scratch space.
	buf    []byte
	filled int
}

// New creates a framed connection over rwc. The write side is buffered
// and flushed after every outbound unit.
func New(rwc io.ReadWriteCloser) *Conn {
	return &Conn{
		rwc:    rwc,
		writer: bufio.NewWriter(rwc),
		buf:    make([]byte, initialBufferSize),
	}
}

// ReadUnit returns the next complete unit from the stream. It returns
// io.EOF when the peer closes with no partial unit buffered,
// ErrResetMidFrame when the peer closes mid-unit, and a resp error when
// the buffered bytes are malformed. After any non-nil error the
// connection is unusable and must be discarded.
func (c *Conn) ReadUnit() (*resp.Message, error) {
	for {
		msg, n, err := resp.Decode(c.buf[:c.filled])
		if err == nil {
			// Compact: drop the consumed unit, keep the tail in
			// order at the front for the next call.
			copy(c.buf, c.buf[n:c.filled])
			c.filled -= n
			return msg, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return nil, err
		}

		// Capacity must exist before every read attempt; a single
		// oversized unit can require several rounds of growth.
		if c.filled == len(c.buf) {
			c.grow()
		}

		n, rerr := c.rwc.Read(c.buf[c.filled:])
		c.filled += n
		if rerr != nil {
			if rerr == io.EOF {
				if c.filled == 0 {
					return nil, io.EOF
				}
				if n > 0 {
					// The final chunk may have completed a unit.
					continue
				}
				return nil, ErrResetMidFrame
			}
			return nil, rerr
		}
	}
}

// grow doubles the buffer, preserving the filled prefix. The old
// allocation is fully replaced.
func (c *Conn) grow() {
	size := len(c.buf) * 2
	if size == 0 {
		size = initialBufferSize
	}
	grown := make([]byte, size)
	copy(grown, c.buf[:c.filled])
	c.buf = grown
}

// WriteUnit encodes one scalar unit and flushes it to the stream.
// Aggregate units are refused with ErrUnsupportedWrite before any byte
// is written. An I/O error leaves the stream partially written; the
// caller must treat it as fatal for the connection.
func (c *Conn) WriteUnit(m *resp.Message) error {
	switch m.Type {
	case resp.TypeSimpleString:
		if err := c.writeLine('+', m.Value.(string)); err != nil {
			return err
		}

	case resp.TypeError:
		if err := c.writeLine('-', m.Value.(string)); err != nil {
			return err
		}

	case resp.TypeInteger:
		if err := c.writer.WriteByte(':'); err != nil {
			return err
		}
		if err := c.writeDecimal(m.Value.(int64)); err != nil {
			return err
		}

	case resp.TypeBulkString:
		if m.Value == nil {
			if _, err := c.writer.WriteString("$-1\r\n"); err != nil {
				return err
			}
			break
		}
		data := m.Value.([]byte)
		if err := c.writer.WriteByte('$'); err != nil {
			return err
		}
		if err := c.writeDecimal(int64(len(data))); err != nil {
			return err
		}
		if _, err := c.writer.Write(data); err != nil {
			return err
		}
		if _, err := c.writer.WriteString("\r\n"); err != nil {
			return err
		}

	default:
		return ErrUnsupportedWrite
	}

	return c.writer.Flush()
}

// WriteRaw writes pre-encoded bytes and flushes. The handler uses it
// for aggregate replies, which WriteUnit deliberately refuses.
func (c *Conn) WriteRaw(b []byte) error {
	if _, err := c.writer.Write(b); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *Conn) writeLine(tag byte, text string) error {
	if err := c.writer.WriteByte(tag); err != nil {
		return err
	}
	if _, err := c.writer.WriteString(text); err != nil {
		return err
	}
	_, err := c.writer.WriteString("\r\n")
	return err
}

// writeDecimal writes v as decimal ASCII followed by CRLF, without
// allocating an intermediate buffer.
func (c *Conn) writeDecimal(v int64) error {
	var scratch [20]byte
	digits := strconv.AppendInt(scratch[:0], v, 10)
	if _, err := c.writer.Write(digits); err != nil {
		return err
	}
	_, err := c.writer.WriteString("\r\n")
	return err
}

// Buffered returns the number of unconsumed bytes currently held in the
// read buffer.
func (c *Conn) Buffered() int {
	return c.filled
}

// Close closes the underlying stream. Pending write-buffer contents are
// not flushed; a unit is either fully written by WriteUnit or the
// connection is considered broken.
func (c *Conn) Close() error {
	return c.rwc.Close()
}
