// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"strconv"
	"strings"
	"time"

	"github.com/zyhnesmr/minidis/internal/command"
	"github.com/zyhnesmr/minidis/internal/database"
	"github.com/zyhnesmr/minidis/internal/protocol/resp"
)

// RegisterStringCommands registers all string commands
func RegisterStringCommands(disp *command.Dispatcher) {
	disp.Register(&command.Command{
		Name:    "SET",
		Handler: setCmd,
		Arity:   -3,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "GET",
		Handler: getCmd,
		Arity:   2,
		Flags:   []string{command.FlagReadOnly, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "GETSET",
		Handler: getsetCmd,
		Arity:   3,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "SETNX",
		Handler: setnxCmd,
		Arity:   3,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "SETEX",
		Handler: setexCmd,
		Arity:   4,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "PSETEX",
		Handler: psetexCmd,
		Arity:   4,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "APPEND",
		Handler: appendCmd,
		Arity:   3,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "STRLEN",
		Handler: strlenCmd,
		Arity:   2,
		Flags:   []string{command.FlagReadOnly, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "INCR",
		Handler: incrCmd,
		Arity:   2,
		Flags:   []string{command.FlagWrite, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "DECR",
		Handler: decrCmd,
		Arity:   2,
		Flags:   []string{command.FlagWrite, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "INCRBY",
		Handler: incrbyCmd,
		Arity:   3,
		Flags:   []string{command.FlagWrite, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "DECRBY",
		Handler: decrbyCmd,
		Arity:   3,
		Flags:   []string{command.FlagWrite, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "MGET",
		Handler: mgetCmd,
		Arity:   -2,
		Flags:   []string{command.FlagReadOnly},
	})

	disp.Register(&command.Command{
		Name:    "MSET",
		Handler: msetCmd,
		Arity:   -3,
		Flags:   []string{command.FlagWrite},
	})
}

func setCmd(ctx *command.Context) *resp.Message {
	key := ctx.Args[0]
	value := []byte(ctx.Args[1])

	var ttl time.Duration
	var nx, xx bool

	for i := 2; i < len(ctx.Args); i++ {
		switch strings.ToUpper(ctx.Args[i]) {
		case "EX", "PX":
			if i+1 >= len(ctx.Args) {
				return command.SyntaxErr()
			}
			n, err := strconv.ParseInt(ctx.Args[i+1], 10, 64)
			if err != nil || n <= 0 {
				return command.ErrReply("ERR invalid expire time in 'set' command")
			}
			if strings.ToUpper(ctx.Args[i]) == "EX" {
				ttl = time.Duration(n) * time.Second
			} else {
				ttl = time.Duration(n) * time.Millisecond
			}
			i++
		case "NX":
			nx = true
		case "XX":
			xx = true
		default:
			return command.SyntaxErr()
		}
	}
	if nx && xx {
		return command.SyntaxErr()
	}

	switch {
	case nx:
		if !ctx.DB.SetNX(key, value) {
			return resp.NewNil()
		}
	case xx:
		if !ctx.DB.SetXX(key, value) {
			return resp.NewNil()
		}
	default:
		ctx.DB.Set(key, value)
	}

	if ttl > 0 {
		ctx.DB.ExpireAt(key, time.Now().Add(ttl))
	}
	return command.OK()
}

func getCmd(ctx *command.Context) *resp.Message {
	value, ok := ctx.DB.Get(ctx.Args[0])
	if !ok {
		return resp.NewNil()
	}
	return resp.NewBulkString(value)
}

func getsetCmd(ctx *command.Context) *resp.Message {
	old, ok := ctx.DB.GetSet(ctx.Args[0], []byte(ctx.Args[1]))
	if !ok {
		return resp.NewNil()
	}
	return resp.NewBulkString(old)
}

func setnxCmd(ctx *command.Context) *resp.Message {
	if ctx.DB.SetNX(ctx.Args[0], []byte(ctx.Args[1])) {
		return resp.NewInteger(1)
	}
	return resp.NewInteger(0)
}

func setexCmd(ctx *command.Context) *resp.Message {
	return setWithTTL(ctx, time.Second)
}

func psetexCmd(ctx *command.Context) *resp.Message {
	return setWithTTL(ctx, time.Millisecond)
}

func setWithTTL(ctx *command.Context, unit time.Duration) *resp.Message {
	n, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil || n <= 0 {
		return command.ErrReply("ERR invalid expire time in '%s' command", strings.ToLower(ctx.CmdName))
	}
	ctx.DB.SetWithTTL(ctx.Args[0], []byte(ctx.Args[2]), time.Duration(n)*unit)
	return command.OK()
}

func appendCmd(ctx *command.Context) *resp.Message {
	n := ctx.DB.Append(ctx.Args[0], []byte(ctx.Args[1]))
	return resp.NewInteger(int64(n))
}

func strlenCmd(ctx *command.Context) *resp.Message {
	return resp.NewInteger(int64(ctx.DB.StrLen(ctx.Args[0])))
}

func incrCmd(ctx *command.Context) *resp.Message {
	return incrByDelta(ctx, 1)
}

func decrCmd(ctx *command.Context) *resp.Message {
	return incrByDelta(ctx, -1)
}

func incrbyCmd(ctx *command.Context) *resp.Message {
	delta, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil {
		return resp.NewError("ERR " + database.ErrNotInteger.Error())
	}
	return incrByDelta(ctx, delta)
}

func decrbyCmd(ctx *command.Context) *resp.Message {
	delta, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil {
		return resp.NewError("ERR " + database.ErrNotInteger.Error())
	}
	return incrByDelta(ctx, -delta)
}

func incrByDelta(ctx *command.Context, delta int64) *resp.Message {
	value, err := ctx.DB.IncrBy(ctx.Args[0], delta)
	if err != nil {
		return resp.NewError("ERR " + err.Error())
	}
	return resp.NewInteger(value)
}

func mgetCmd(ctx *command.Context) *resp.Message {
	items := make([]*resp.Message, len(ctx.Args))
	for i, key := range ctx.Args {
		if value, ok := ctx.DB.Get(key); ok {
			items[i] = resp.NewBulkString(value)
		} else {
			items[i] = resp.NewNil()
		}
	}
	return resp.NewArray(items)
}

func msetCmd(ctx *command.Context) *resp.Message {
	if len(ctx.Args)%2 != 0 {
		return command.WrongArgc("mset")
	}
	for i := 0; i < len(ctx.Args); i += 2 {
		ctx.DB.Set(ctx.Args[i], []byte(ctx.Args[i+1]))
	}
	return command.OK()
}
