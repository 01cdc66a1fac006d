// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package script runs server-side Lua through gopher-lua. Scripts see
// the usual KEYS/ARGV globals and a redis table whose call function is
// routed back through the command dispatcher.
package script

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/zyhnesmr/minidis/internal/protocol/resp"
	"github.com/zyhnesmr/minidis/pkg/log"
)

// CallFunc executes one command on behalf of a running script
type CallFunc func(name string, args []string) *resp.Message

// Manager caches scripts by their SHA1 and executes them
type Manager struct {
	mu      sync.RWMutex
	scripts map[string]string // sha1 hex -> source
}

// NewManager creates an empty script cache
func NewManager() *Manager {
	return &Manager{scripts: make(map[string]string)}
}

// Load caches a script and returns its SHA1
func (m *Manager) Load(src string) string {
	sum := Sha1Hex(src)
	m.mu.Lock()
	m.scripts[sum] = src
	m.mu.Unlock()
	return sum
}

// Get returns the cached script with the given SHA1
func (m *Manager) Get(sum string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.scripts[sum]
	return src, ok
}

// Exists reports whether a script with the given SHA1 is cached
func (m *Manager) Exists(sum string) bool {
	_, ok := m.Get(sum)
	return ok
}

// Flush empties the script cache
func (m *Manager) Flush() {
	m.mu.Lock()
	m.scripts = make(map[string]string)
	m.mu.Unlock()
}

// Sha1Hex returns the lowercase hex SHA1 of src
func Sha1Hex(src string) string {
	sum := sha1.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Run executes a script with the given KEYS and ARGV. Commands invoked
// through redis.call run via call.
func (m *Manager) Run(src string, keys, args []string, call CallFunc) (*resp.Message, error) {
	L := lua.NewState()
	defer L.Close()

	registerRedisAPI(L, call)

	keysTbl := L.NewTable()
	for i, key := range keys {
		L.RawSetInt(keysTbl, i+1, lua.LString(key))
	}
	L.SetGlobal("KEYS", keysTbl)

	argsTbl := L.NewTable()
	for i, arg := range args {
		L.RawSetInt(argsTbl, i+1, lua.LString(arg))
	}
	L.SetGlobal("ARGV", argsTbl)

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("error running script: %s", err.Error())
	}

	if L.GetTop() == 0 {
		return resp.NewNil(), nil
	}
	return luaToReply(L, L.Get(-1)), nil
}

func registerRedisAPI(L *lua.LState, call CallFunc) {
	redisTbl := L.NewTable()
	L.SetField(redisTbl, "call", L.NewFunction(redisCall(call)))
	L.SetField(redisTbl, "pcall", L.NewFunction(redisCall(call)))
	L.SetField(redisTbl, "sha1hex", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(Sha1Hex(L.CheckString(1))))
		return 1
	}))
	L.SetField(redisTbl, "error_reply", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		L.SetField(tbl, "err", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))
	L.SetField(redisTbl, "status_reply", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		L.SetField(tbl, "ok", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))
	L.SetField(redisTbl, "log", L.NewFunction(func(L *lua.LState) int {
		log.Debug("lua: %s", L.CheckString(L.GetTop()))
		return 0
	}))
	L.SetGlobal("redis", redisTbl)
}

func redisCall(call CallFunc) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		n := L.GetTop()
		args := make([]string, 0, n-1)
		for i := 2; i <= n; i++ {
			args = append(args, L.CheckString(i))
		}
		L.Push(replyToLua(L, call(name, args)))
		return 1
	}
}

// replyToLua converts a reply unit to its Lua representation
func replyToLua(L *lua.LState, m *resp.Message) lua.LValue {
	if m == nil || m.IsNil() {
		return lua.LFalse
	}

	switch m.Type {
	case resp.TypeSimpleString:
		tbl := L.NewTable()
		L.SetField(tbl, "ok", lua.LString(m.Value.(string)))
		return tbl
	case resp.TypeError:
		tbl := L.NewTable()
		L.SetField(tbl, "err", lua.LString(m.Value.(string)))
		return tbl
	case resp.TypeInteger:
		return lua.LNumber(m.Value.(int64))
	case resp.TypeBulkString:
		return lua.LString(string(m.Value.([]byte)))
	case resp.TypeArray:
		tbl := L.NewTable()
		items, _ := m.Array()
		for i, item := range items {
			L.RawSetInt(tbl, i+1, replyToLua(L, item))
		}
		return tbl
	default:
		return lua.LNil
	}
}

// luaToReply converts a script return value to a reply unit using the
// Redis conversion rules: numbers truncate to integers, false is null,
// tables with ok/err fields are status/error replies, other tables are
// arrays up to the first nil.
func luaToReply(L *lua.LState, value lua.LValue) *resp.Message {
	switch v := value.(type) {
	case lua.LString:
		return resp.NewBulkStringFromString(string(v))
	case lua.LNumber:
		return resp.NewInteger(int64(v))
	case lua.LBool:
		if bool(v) {
			return resp.NewInteger(1)
		}
		return resp.NewNil()
	case *lua.LTable:
		if s, ok := L.GetField(v, "err").(lua.LString); ok {
			return resp.NewError(string(s))
		}
		if s, ok := L.GetField(v, "ok").(lua.LString); ok {
			return resp.NewSimpleString(string(s))
		}
		items := make([]*resp.Message, 0)
		for i := 1; ; i++ {
			item := L.RawGetInt(v, i)
			if item == lua.LNil {
				break
			}
			items = append(items, luaToReply(L, item))
		}
		return resp.NewArray(items)
	default:
		return resp.NewNil()
	}
}
