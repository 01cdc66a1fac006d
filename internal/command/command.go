// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"fmt"
	"time"

	"github.com/zyhnesmr/minidis/internal/database"
	"github.com/zyhnesmr/minidis/internal/net"
	"github.com/zyhnesmr/minidis/internal/protocol/resp"
)

// Context is the execution context passed to command handlers
type Context struct {
	DB       *database.DB
	Selector *database.Selector
	Client   *net.Client
	Info     *ServerInfo
	CmdName  string
	Args     []string
}

// Handler executes one command and returns the reply unit
type Handler func(ctx *Context) *resp.Message

// Command describes a registered command
type Command struct {
	Name    string
	Handler Handler
	// Arity counts the command name itself, Redis-style: GET has
	// arity 2. Negative means "at least".
	Arity int
	Flags []string
}

const (
	FlagReadOnly = "readonly"
	FlagWrite    = "write"
	FlagFast     = "fast"
	FlagAdmin    = "admin"
	FlagScript   = "script"
)

// CheckArity validates the argument count (argc excludes the command
// name)
func (c *Command) CheckArity(argc int) error {
	if c.Arity >= 0 {
		if argc != c.Arity-1 {
			return fmt.Errorf("ERR wrong number of arguments for '%s' command", c.Name)
		}
		return nil
	}
	if argc < -c.Arity-1 {
		return fmt.Errorf("ERR wrong number of arguments for '%s' command", c.Name)
	}
	return nil
}

// ServerInfo carries process-level facts for INFO and friends
type ServerInfo struct {
	Version   string
	RunID     string
	StartTime time.Time
	Clients   func() int
}

// OK returns the +OK status reply
func OK() *resp.Message {
	return resp.NewSimpleString("OK")
}

// WrongArgc returns the standard arity error reply
func WrongArgc(name string) *resp.Message {
	return resp.NewError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", name))
}

// SyntaxErr returns the standard syntax error reply
func SyntaxErr() *resp.Message {
	return resp.NewError("ERR syntax error")
}

// ErrReply formats an error reply
func ErrReply(format string, args ...interface{}) *resp.Message {
	return resp.NewError(fmt.Sprintf(format, args...))
}
