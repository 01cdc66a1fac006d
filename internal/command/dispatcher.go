// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"context"
	"strings"
	"sync"

	"github.com/zyhnesmr/minidis/internal/database"
	"github.com/zyhnesmr/minidis/internal/net"
	"github.com/zyhnesmr/minidis/internal/protocol/resp"
)

// Dispatcher routes commands to their registered handlers
type Dispatcher struct {
	mu       sync.RWMutex
	commands map[string]*Command

	selector *database.Selector
	info     *ServerInfo
}

// NewDispatcher creates a dispatcher over the given keyspaces
func NewDispatcher(selector *database.Selector, info *ServerInfo) *Dispatcher {
	return &Dispatcher{
		commands: make(map[string]*Command),
		selector: selector,
		info:     info,
	}
}

// Register adds a command to the table
func (d *Dispatcher) Register(cmd *Command) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands[strings.ToLower(cmd.Name)] = cmd
}

// Get returns a command by name, case-insensitively
func (d *Dispatcher) Get(name string) (*Command, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cmd, ok := d.commands[strings.ToLower(name)]
	return cmd, ok
}

// Names returns the registered command names
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	return names
}

// Selector returns the database selector
func (d *Dispatcher) Selector() *database.Selector {
	return d.selector
}

// Dispatch implements net.Dispatcher
func (d *Dispatcher) Dispatch(ctx context.Context, client *net.Client, name string, args []string) *resp.Message {
	db, err := d.selector.Get(client.DB())
	if err != nil {
		return resp.NewError("ERR invalid DB index")
	}
	return d.Execute(ctx, db, client, name, args)
}

// Execute runs one command against an explicit database. Scripts use it
// to run commands outside a client's own selection.
func (d *Dispatcher) Execute(ctx context.Context, db *database.DB, client *net.Client, name string, args []string) *resp.Message {
	cmd, ok := d.Get(name)
	if !ok {
		return ErrReply("ERR unknown command '%s'", name)
	}
	if err := cmd.CheckArity(len(args)); err != nil {
		return resp.NewError(err.Error())
	}

	return cmd.Handler(&Context{
		DB:       db,
		Selector: d.selector,
		Client:   client,
		Info:     d.info,
		CmdName:  cmd.Name,
		Args:     args,
	})
}
