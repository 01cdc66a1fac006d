// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resp

import (
	"bytes"
	"errors"
	"strconv"
)

// Type represents the RESP data type
type Type byte

const (
	TypeSimpleString Type = '+'
	TypeError        Type = '-'
	TypeInteger      Type = ':'
	TypeBulkString   Type = '$'
	TypeArray        Type = '*'
)

// Message represents a single RESP protocol unit
type Message struct {
	Type  Type
	Value interface{}
}

// NewSimpleString creates a simple string message
func NewSimpleString(s string) *Message {
	return &Message{Type: TypeSimpleString, Value: s}
}

// NewError creates an error message
func NewError(s string) *Message {
	return &Message{Type: TypeError, Value: s}
}

// NewInteger creates an integer message
func NewInteger(i int64) *Message {
	return &Message{Type: TypeInteger, Value: i}
}

// NewBulkString creates a bulk string message
func NewBulkString(b []byte) *Message {
	return &Message{Type: TypeBulkString, Value: b}
}

// NewBulkStringFromString creates a bulk string message from a string
func NewBulkStringFromString(s string) *Message {
	return &Message{Type: TypeBulkString, Value: []byte(s)}
}

// NewNil creates a null bulk string message
func NewNil() *Message {
	return &Message{Type: TypeBulkString, Value: nil}
}

// NewArray creates an array message
func NewArray(items []*Message) *Message {
	return &Message{Type: TypeArray, Value: items}
}

// IsNil returns true if the message represents a null value
func (m *Message) IsNil() bool {
	return m.Type == TypeBulkString && m.Value == nil
}

// String returns the text of simple strings and bulk strings
func (m *Message) String() (string, bool) {
	switch m.Type {
	case TypeSimpleString:
		return m.Value.(string), true
	case TypeBulkString:
		if m.Value == nil {
			return "", false
		}
		return string(m.Value.([]byte)), true
	default:
		return "", false
	}
}

// Bytes returns the payload of a bulk string
func (m *Message) Bytes() ([]byte, bool) {
	if m.Type == TypeBulkString && m.Value != nil {
		return m.Value.([]byte), true
	}
	return nil, false
}

// Integer returns the integer value
func (m *Message) Integer() (int64, bool) {
	if m.Type == TypeInteger {
		return m.Value.(int64), true
	}
	return 0, false
}

// Array returns the array items
func (m *Message) Array() ([]*Message, bool) {
	if m.Type == TypeArray {
		items, _ := m.Value.([]*Message)
		return items, true
	}
	return nil, false
}

// ErrString returns the error text
func (m *Message) ErrString() (string, bool) {
	if m.Type == TypeError {
		return m.Value.(string), true
	}
	return "", false
}

// Command interprets an array message as a client command and returns
// the command name with its arguments.
func (m *Message) Command() (string, []string, error) {
	items, ok := m.Array()
	if !ok {
		return "", nil, errors.New("expected array")
	}
	if len(items) == 0 {
		return "", nil, errors.New("empty command")
	}

	name, ok := items[0].String()
	if !ok {
		return "", nil, errors.New("command name is not a string")
	}

	args := make([]string, 0, len(items)-1)
	for i := 1; i < len(items); i++ {
		arg, ok := items[i].String()
		if !ok {
			if n, ok := items[i].Integer(); ok {
				args = append(args, strconv.FormatInt(n, 10))
				continue
			}
			return "", nil, errors.New("command argument is not a string")
		}
		args = append(args, arg)
	}

	return name, args, nil
}

// Marshal serializes the message to its RESP wire form. The framed
// transport encodes scalar units itself; Marshal exists for aggregate
// replies and for building test fixtures.
func (m *Message) Marshal() []byte {
	var buf bytes.Buffer
	m.marshalTo(&buf)
	return buf.Bytes()
}

func (m *Message) marshalTo(buf *bytes.Buffer) {
	switch m.Type {
	case TypeSimpleString:
		buf.WriteByte(byte(TypeSimpleString))
		buf.WriteString(m.Value.(string))
		buf.WriteString("\r\n")

	case TypeError:
		buf.WriteByte(byte(TypeError))
		buf.WriteString(m.Value.(string))
		buf.WriteString("\r\n")

	case TypeInteger:
		buf.WriteByte(byte(TypeInteger))
		buf.WriteString(strconv.FormatInt(m.Value.(int64), 10))
		buf.WriteString("\r\n")

	case TypeBulkString:
		buf.WriteByte(byte(TypeBulkString))
		if m.Value == nil {
			buf.WriteString("-1\r\n")
			return
		}
		data := m.Value.([]byte)
		buf.WriteString(strconv.Itoa(len(data)))
		buf.WriteString("\r\n")
		buf.Write(data)
		buf.WriteString("\r\n")

	case TypeArray:
		buf.WriteByte(byte(TypeArray))
		if m.Value == nil {
			buf.WriteString("-1\r\n")
			return
		}
		items := m.Value.([]*Message)
		buf.WriteString(strconv.Itoa(len(items)))
		buf.WriteString("\r\n")
		for _, item := range items {
			item.marshalTo(buf)
		}
	}
}
