// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zyhnesmr/minidis/internal/command"
	"github.com/zyhnesmr/minidis/internal/protocol/resp"
)

// RegisterServerCommands registers connection and server commands
func RegisterServerCommands(disp *command.Dispatcher) {
	disp.Register(&command.Command{
		Name:    "PING",
		Handler: pingCmd,
		Arity:   -1,
		Flags:   []string{command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "ECHO",
		Handler: echoCmd,
		Arity:   2,
		Flags:   []string{command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "SELECT",
		Handler: selectCmd,
		Arity:   2,
		Flags:   []string{command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "DBSIZE",
		Handler: dbsizeCmd,
		Arity:   1,
		Flags:   []string{command.FlagReadOnly, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "FLUSHDB",
		Handler: flushdbCmd,
		Arity:   1,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "FLUSHALL",
		Handler: flushallCmd,
		Arity:   1,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "INFO",
		Handler: infoCmd,
		Arity:   -1,
		Flags:   []string{command.FlagReadOnly},
	})

	disp.Register(&command.Command{
		Name:    "COMMAND",
		Handler: commandListCmd(disp),
		Arity:   -1,
		Flags:   []string{command.FlagReadOnly},
	})
}

func pingCmd(ctx *command.Context) *resp.Message {
	switch len(ctx.Args) {
	case 0:
		return resp.NewSimpleString("PONG")
	case 1:
		return resp.NewBulkStringFromString(ctx.Args[0])
	default:
		return command.WrongArgc("ping")
	}
}

func echoCmd(ctx *command.Context) *resp.Message {
	return resp.NewBulkStringFromString(ctx.Args[0])
}

func selectCmd(ctx *command.Context) *resp.Message {
	index, err := strconv.Atoi(ctx.Args[0])
	if err != nil {
		return resp.NewError("ERR value is not an integer or out of range")
	}
	if _, err := ctx.Selector.Get(index); err != nil {
		return resp.NewError("ERR DB index is out of range")
	}
	ctx.Client.SetDB(index)
	return command.OK()
}

func dbsizeCmd(ctx *command.Context) *resp.Message {
	return resp.NewInteger(int64(ctx.DB.Size()))
}

func flushdbCmd(ctx *command.Context) *resp.Message {
	ctx.DB.Flush()
	return command.OK()
}

func flushallCmd(ctx *command.Context) *resp.Message {
	ctx.Selector.FlushAll()
	return command.OK()
}

func infoCmd(ctx *command.Context) *resp.Message {
	info := ctx.Info

	var b strings.Builder
	b.WriteString("# Server\r\n")
	fmt.Fprintf(&b, "minidis_version:%s\r\n", info.Version)
	fmt.Fprintf(&b, "run_id:%s\r\n", info.RunID)
	fmt.Fprintf(&b, "process_id:%d\r\n", os.Getpid())
	fmt.Fprintf(&b, "uptime_in_seconds:%d\r\n", int64(time.Since(info.StartTime).Seconds()))
	b.WriteString("# Clients\r\n")
	fmt.Fprintf(&b, "connected_clients:%d\r\n", info.Clients())
	b.WriteString("# Keyspace\r\n")
	fmt.Fprintf(&b, "total_keys:%d\r\n", ctx.Selector.TotalKeys())

	return resp.NewBulkStringFromString(b.String())
}

func commandListCmd(disp *command.Dispatcher) command.Handler {
	return func(ctx *command.Context) *resp.Message {
		names := disp.Names()
		items := make([]*resp.Message, len(names))
		for i, name := range names {
			items[i] = resp.NewBulkStringFromString(name)
		}
		return resp.NewArray(items)
	}
}
