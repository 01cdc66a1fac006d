// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"strconv"
	"time"

	"github.com/zyhnesmr/minidis/internal/command"
	"github.com/zyhnesmr/minidis/internal/protocol/resp"
)

// RegisterKeyCommands registers all generic key commands
func RegisterKeyCommands(disp *command.Dispatcher) {
	disp.Register(&command.Command{
		Name:    "DEL",
		Handler: delCmd,
		Arity:   -2,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "EXISTS",
		Handler: existsCmd,
		Arity:   -2,
		Flags:   []string{command.FlagReadOnly, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "TYPE",
		Handler: typeCmd,
		Arity:   2,
		Flags:   []string{command.FlagReadOnly, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "KEYS",
		Handler: keysCmd,
		Arity:   2,
		Flags:   []string{command.FlagReadOnly},
	})

	disp.Register(&command.Command{
		Name:    "RENAME",
		Handler: renameCmd,
		Arity:   3,
		Flags:   []string{command.FlagWrite},
	})

	disp.Register(&command.Command{
		Name:    "EXPIRE",
		Handler: expireCmd,
		Arity:   3,
		Flags:   []string{command.FlagWrite, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "PEXPIRE",
		Handler: pexpireCmd,
		Arity:   3,
		Flags:   []string{command.FlagWrite, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "TTL",
		Handler: ttlCmd,
		Arity:   2,
		Flags:   []string{command.FlagReadOnly, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "PTTL",
		Handler: pttlCmd,
		Arity:   2,
		Flags:   []string{command.FlagReadOnly, command.FlagFast},
	})

	disp.Register(&command.Command{
		Name:    "PERSIST",
		Handler: persistCmd,
		Arity:   2,
		Flags:   []string{command.FlagWrite, command.FlagFast},
	})
}

func delCmd(ctx *command.Context) *resp.Message {
	removed := int64(0)
	for _, key := range ctx.Args {
		if ctx.DB.Delete(key) {
			removed++
		}
	}
	return resp.NewInteger(removed)
}

func existsCmd(ctx *command.Context) *resp.Message {
	found := int64(0)
	for _, key := range ctx.Args {
		if ctx.DB.Exists(key) {
			found++
		}
	}
	return resp.NewInteger(found)
}

func typeCmd(ctx *command.Context) *resp.Message {
	if ctx.DB.Exists(ctx.Args[0]) {
		return resp.NewSimpleString("string")
	}
	return resp.NewSimpleString("none")
}

func keysCmd(ctx *command.Context) *resp.Message {
	keys := ctx.DB.Keys(ctx.Args[0])
	items := make([]*resp.Message, len(keys))
	for i, key := range keys {
		items[i] = resp.NewBulkStringFromString(key)
	}
	return resp.NewArray(items)
}

func renameCmd(ctx *command.Context) *resp.Message {
	if err := ctx.DB.Rename(ctx.Args[0], ctx.Args[1]); err != nil {
		return resp.NewError("ERR " + err.Error())
	}
	return command.OK()
}

func expireCmd(ctx *command.Context) *resp.Message {
	return expireIn(ctx, time.Second)
}

func pexpireCmd(ctx *command.Context) *resp.Message {
	return expireIn(ctx, time.Millisecond)
}

func expireIn(ctx *command.Context, unit time.Duration) *resp.Message {
	n, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil {
		return resp.NewError("ERR value is not an integer or out of range")
	}
	if n <= 0 {
		// A non-positive timeout deletes the key, as EXPIRE does.
		if ctx.DB.Delete(ctx.Args[0]) {
			return resp.NewInteger(1)
		}
		return resp.NewInteger(0)
	}
	if ctx.DB.ExpireAt(ctx.Args[0], time.Now().Add(time.Duration(n)*unit)) {
		return resp.NewInteger(1)
	}
	return resp.NewInteger(0)
}

func ttlCmd(ctx *command.Context) *resp.Message {
	return ttlIn(ctx, time.Second)
}

func pttlCmd(ctx *command.Context) *resp.Message {
	return ttlIn(ctx, time.Millisecond)
}

func ttlIn(ctx *command.Context, unit time.Duration) *resp.Message {
	ttl, hasKey, hasTTL := ctx.DB.TTL(ctx.Args[0])
	if !hasKey {
		return resp.NewInteger(-2)
	}
	if !hasTTL {
		return resp.NewInteger(-1)
	}
	return resp.NewInteger(int64(ttl / unit))
}

func persistCmd(ctx *command.Context) *resp.Message {
	if ctx.DB.Persist(ctx.Args[0]) {
		return resp.NewInteger(1)
	}
	return resp.NewInteger(0)
}
