// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/zyhnesmr/minidis/internal/command"
	"github.com/zyhnesmr/minidis/internal/protocol/resp"
	"github.com/zyhnesmr/minidis/internal/script"
)

// RegisterScriptCommands registers EVAL, EVALSHA and SCRIPT
func RegisterScriptCommands(disp *command.Dispatcher, mgr *script.Manager) {
	disp.Register(&command.Command{
		Name:    "EVAL",
		Handler: evalCmd(disp, mgr),
		Arity:   -3,
		Flags:   []string{command.FlagScript},
	})

	disp.Register(&command.Command{
		Name:    "EVALSHA",
		Handler: evalshaCmd(disp, mgr),
		Arity:   -3,
		Flags:   []string{command.FlagScript},
	})

	disp.Register(&command.Command{
		Name:    "SCRIPT",
		Handler: scriptCmd(mgr),
		Arity:   -2,
		Flags:   []string{command.FlagScript, command.FlagAdmin},
	})
}

func evalCmd(disp *command.Dispatcher, mgr *script.Manager) command.Handler {
	return func(ctx *command.Context) *resp.Message {
		// Cache by SHA1 so a later EVALSHA finds it, as EVAL does.
		mgr.Load(ctx.Args[0])
		return runScript(disp, mgr, ctx, ctx.Args[0])
	}
}

func evalshaCmd(disp *command.Dispatcher, mgr *script.Manager) command.Handler {
	return func(ctx *command.Context) *resp.Message {
		src, ok := mgr.Get(strings.ToLower(ctx.Args[0]))
		if !ok {
			return resp.NewError("NOSCRIPT No matching script. Please use EVAL.")
		}
		return runScript(disp, mgr, ctx, src)
	}
}

func runScript(disp *command.Dispatcher, mgr *script.Manager, ctx *command.Context, src string) *resp.Message {
	numKeys, err := strconv.Atoi(ctx.Args[1])
	if err != nil || numKeys < 0 || numKeys > len(ctx.Args)-2 {
		return resp.NewError("ERR value is not an integer or out of range")
	}
	keys := ctx.Args[2 : 2+numKeys]
	args := ctx.Args[2+numKeys:]

	call := func(name string, cmdArgs []string) *resp.Message {
		return disp.Execute(context.Background(), ctx.DB, ctx.Client, name, cmdArgs)
	}

	reply, err := mgr.Run(src, keys, args, call)
	if err != nil {
		return resp.NewError("ERR " + err.Error())
	}
	return reply
}

func scriptCmd(mgr *script.Manager) command.Handler {
	return func(ctx *command.Context) *resp.Message {
		switch strings.ToUpper(ctx.Args[0]) {
		case "LOAD":
			if len(ctx.Args) != 2 {
				return command.WrongArgc("script|load")
			}
			return resp.NewBulkStringFromString(mgr.Load(ctx.Args[1]))

		case "EXISTS":
			items := make([]*resp.Message, len(ctx.Args)-1)
			for i, sum := range ctx.Args[1:] {
				if mgr.Exists(strings.ToLower(sum)) {
					items[i] = resp.NewInteger(1)
				} else {
					items[i] = resp.NewInteger(0)
				}
			}
			return resp.NewArray(items)

		case "FLUSH":
			mgr.Flush()
			return command.OK()

		default:
			return command.ErrReply("ERR Unknown SCRIPT subcommand '%s'", ctx.Args[0])
		}
	}
}
