// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrIncomplete    = errors.New("incomplete message")
	ErrInvalidSyntax = errors.New("invalid syntax")
	ErrInvalidType   = errors.New("invalid type")
	ErrCRLFExpected  = errors.New("CRLF expected")
	ErrBulkTooBig    = errors.New("bulk string too big")
)

const maxBulkSize = 512 * 1024 * 1024 // 512MB

var crlf = []byte("\r\n")

// Check scans the window for one complete message starting at offset 0
// and returns its encoded byte length. It returns ErrIncomplete when the
// window holds only a prefix of a message; callers may retry with a
// longer window. Any other error means the bytes are malformed and the
// stream cannot be resynchronized.
func Check(b []byte) (int, error) {
	return check(b, 0)
}

// Parse decodes the first message in a window previously validated by
// Check.
func Parse(b []byte) (*Message, error) {
	msg, _, err := parse(b, 0)
	return msg, err
}

// Decode combines Check and Parse: it decodes the first complete message
// in the window and reports how many bytes it consumed.
func Decode(b []byte) (*Message, int, error) {
	end, err := Check(b)
	if err != nil {
		return nil, 0, err
	}
	msg, err := Parse(b[:end])
	if err != nil {
		return nil, 0, err
	}
	return msg, end, nil
}

// readLine returns the line content starting at pos and the offset just
// past its CRLF terminator.
func readLine(b []byte, pos int) ([]byte, int, error) {
	idx := bytes.Index(b[pos:], crlf)
	if idx < 0 {
		return nil, 0, ErrIncomplete
	}
	return b[pos : pos+idx], pos + idx + 2, nil
}

// check validates one message starting at pos and returns the offset
// just past its end.
func check(b []byte, pos int) (int, error) {
	if pos >= len(b) {
		return 0, ErrIncomplete
	}

	switch Type(b[pos]) {
	case TypeSimpleString, TypeError:
		_, next, err := readLine(b, pos+1)
		return next, err

	case TypeInteger:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return 0, err
		}
		if _, err := strconv.ParseInt(string(line), 10, 64); err != nil {
			return 0, fmt.Errorf("%w: invalid integer: %q", ErrInvalidSyntax, line)
		}
		return next, nil

	case TypeBulkString:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return 0, err
		}
		length, err := strconv.Atoi(string(line))
		if err != nil {
			return 0, fmt.Errorf("%w: invalid bulk string length: %q", ErrInvalidSyntax, line)
		}
		if length < 0 {
			// Null bulk string
			return next, nil
		}
		if length > maxBulkSize {
			return 0, ErrBulkTooBig
		}
		end := next + length + 2
		if end > len(b) {
			return 0, ErrIncomplete
		}
		if b[end-2] != '\r' || b[end-1] != '\n' {
			return 0, ErrCRLFExpected
		}
		return end, nil

	case TypeArray:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return 0, err
		}
		length, err := strconv.Atoi(string(line))
		if err != nil {
			return 0, fmt.Errorf("%w: invalid array length: %q", ErrInvalidSyntax, line)
		}
		if length < 0 {
			// Null array
			return next, nil
		}
		pos = next
		for i := 0; i < length; i++ {
			pos, err = check(b, pos)
			if err != nil {
				return 0, err
			}
		}
		return pos, nil

	default:
		return 0, fmt.Errorf("%w: unknown type: %q", ErrInvalidType, b[pos])
	}
}

// parse decodes one message starting at pos. The window is assumed to
// have passed check; errors here indicate a defect in the caller.
func parse(b []byte, pos int) (*Message, int, error) {
	if pos >= len(b) {
		return nil, 0, ErrIncomplete
	}

	switch Type(b[pos]) {
	case TypeSimpleString:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return nil, 0, err
		}
		return NewSimpleString(string(line)), next, nil

	case TypeError:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return nil, 0, err
		}
		return NewError(string(line)), next, nil

	case TypeInteger:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return nil, 0, err
		}
		n, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid integer: %q", ErrInvalidSyntax, line)
		}
		return NewInteger(n), next, nil

	case TypeBulkString:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return nil, 0, err
		}
		length, err := strconv.Atoi(string(line))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid bulk string length: %q", ErrInvalidSyntax, line)
		}
		if length < 0 {
			return NewNil(), next, nil
		}
		end := next + length + 2
		if end > len(b) {
			return nil, 0, ErrIncomplete
		}
		// Copy the payload: the window aliases the connection's read
		// buffer, which is compacted after decoding.
		data := make([]byte, length)
		copy(data, b[next:next+length])
		return NewBulkString(data), end, nil

	case TypeArray:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return nil, 0, err
		}
		length, err := strconv.Atoi(string(line))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid array length: %q", ErrInvalidSyntax, line)
		}
		if length < 0 {
			return &Message{Type: TypeArray, Value: nil}, next, nil
		}
		items := make([]*Message, length)
		pos = next
		for i := 0; i < length; i++ {
			items[i], pos, err = parse(b, pos)
			if err != nil {
				return nil, 0, err
			}
		}
		return NewArray(items), pos, nil

	default:
		return nil, 0, fmt.Errorf("%w: unknown type: %q", ErrInvalidType, b[pos])
	}
}
