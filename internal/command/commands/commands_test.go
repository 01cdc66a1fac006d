// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	stdnet "net"
	"strings"
	"testing"
	"time"

	"github.com/zyhnesmr/minidis/internal/command"
	"github.com/zyhnesmr/minidis/internal/database"
	"github.com/zyhnesmr/minidis/internal/net"
	"github.com/zyhnesmr/minidis/internal/protocol/resp"
	"github.com/zyhnesmr/minidis/internal/script"
)

func newTestDispatcher(t *testing.T) (*command.Dispatcher, *net.Client) {
	t.Helper()

	selector := database.NewSelector(4)
	disp := command.NewDispatcher(selector, &command.ServerInfo{
		Version:   "test",
		RunID:     "testrun",
		StartTime: time.Now(),
		Clients:   func() int { return 1 },
	})
	RegisterServerCommands(disp)
	RegisterKeyCommands(disp)
	RegisterStringCommands(disp)
	RegisterScriptCommands(disp, script.NewManager())

	local, remote := stdnet.Pipe()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})

	return disp, net.NewClient(local, 1)
}

func dispatch(disp *command.Dispatcher, client *net.Client, name string, args ...string) *resp.Message {
	return disp.Dispatch(context.Background(), client, name, args)
}

func TestPingEcho(t *testing.T) {
	disp, client := newTestDispatcher(t)

	if s, _ := dispatch(disp, client, "PING").String(); s != "PONG" {
		t.Errorf("PING = %q", s)
	}
	if s, _ := dispatch(disp, client, "ping", "hi").String(); s != "hi" {
		t.Errorf("PING hi = %q", s)
	}
	if s, _ := dispatch(disp, client, "ECHO", "x").String(); s != "x" {
		t.Errorf("ECHO x = %q", s)
	}
}

func TestUnknownAndArity(t *testing.T) {
	disp, client := newTestDispatcher(t)

	reply := dispatch(disp, client, "NOSUCH")
	if msg, ok := reply.ErrString(); !ok || !strings.Contains(msg, "unknown command") {
		t.Errorf("NOSUCH reply = %+v", reply)
	}

	reply = dispatch(disp, client, "GET")
	if msg, ok := reply.ErrString(); !ok || !strings.Contains(msg, "wrong number of arguments") {
		t.Errorf("GET with no key reply = %+v", reply)
	}
}

func TestSetGetDel(t *testing.T) {
	disp, client := newTestDispatcher(t)

	if s, _ := dispatch(disp, client, "SET", "k", "v").String(); s != "OK" {
		t.Fatalf("SET reply = %q", s)
	}
	if s, _ := dispatch(disp, client, "GET", "k").String(); s != "v" {
		t.Errorf("GET = %q", s)
	}
	if !dispatch(disp, client, "GET", "missing").IsNil() {
		t.Error("GET missing should be nil")
	}
	if n, _ := dispatch(disp, client, "DEL", "k", "missing").Integer(); n != 1 {
		t.Errorf("DEL = %d, want 1", n)
	}
}

func TestSetOptions(t *testing.T) {
	disp, client := newTestDispatcher(t)

	if !dispatch(disp, client, "SET", "k", "v", "XX").IsNil() {
		t.Error("SET XX on missing key should be nil")
	}
	if s, _ := dispatch(disp, client, "SET", "k", "v", "NX").String(); s != "OK" {
		t.Error("SET NX on missing key should succeed")
	}
	if !dispatch(disp, client, "SET", "k", "v2", "NX").IsNil() {
		t.Error("SET NX on existing key should be nil")
	}

	if s, _ := dispatch(disp, client, "SET", "tmp", "v", "PX", "100").String(); s != "OK" {
		t.Error("SET PX should succeed")
	}
	if n, _ := dispatch(disp, client, "PTTL", "tmp").Integer(); n <= 0 || n > 100 {
		t.Errorf("PTTL = %d", n)
	}

	reply := dispatch(disp, client, "SET", "k", "v", "NX", "XX")
	if _, ok := reply.ErrString(); !ok {
		t.Error("SET NX XX should be a syntax error")
	}
}

func TestIncrFamily(t *testing.T) {
	disp, client := newTestDispatcher(t)

	if n, _ := dispatch(disp, client, "INCR", "c").Integer(); n != 1 {
		t.Errorf("INCR = %d", n)
	}
	if n, _ := dispatch(disp, client, "INCRBY", "c", "9").Integer(); n != 10 {
		t.Errorf("INCRBY = %d", n)
	}
	if n, _ := dispatch(disp, client, "DECRBY", "c", "4").Integer(); n != 6 {
		t.Errorf("DECRBY = %d", n)
	}
	if n, _ := dispatch(disp, client, "DECR", "c").Integer(); n != 5 {
		t.Errorf("DECR = %d", n)
	}

	dispatch(disp, client, "SET", "text", "abc")
	if _, ok := dispatch(disp, client, "INCR", "text").ErrString(); !ok {
		t.Error("INCR on text should fail")
	}
}

func TestMGetMSet(t *testing.T) {
	disp, client := newTestDispatcher(t)

	if s, _ := dispatch(disp, client, "MSET", "a", "1", "b", "2").String(); s != "OK" {
		t.Fatal("MSET failed")
	}

	reply := dispatch(disp, client, "MGET", "a", "missing", "b")
	items, ok := reply.Array()
	if !ok || len(items) != 3 {
		t.Fatalf("MGET reply = %+v", reply)
	}
	if s, _ := items[0].String(); s != "1" {
		t.Errorf("MGET[0] = %q", s)
	}
	if !items[1].IsNil() {
		t.Error("MGET[1] should be nil")
	}
	if s, _ := items[2].String(); s != "2" {
		t.Errorf("MGET[2] = %q", s)
	}
}

func TestExpireTTL(t *testing.T) {
	disp, client := newTestDispatcher(t)

	dispatch(disp, client, "SET", "k", "v")
	if n, _ := dispatch(disp, client, "EXPIRE", "k", "100").Integer(); n != 1 {
		t.Error("EXPIRE should succeed")
	}
	if n, _ := dispatch(disp, client, "TTL", "k").Integer(); n <= 0 || n > 100 {
		t.Errorf("TTL = %d", n)
	}
	if n, _ := dispatch(disp, client, "PERSIST", "k").Integer(); n != 1 {
		t.Error("PERSIST should succeed")
	}
	if n, _ := dispatch(disp, client, "TTL", "k").Integer(); n != -1 {
		t.Errorf("TTL after PERSIST = %d, want -1", n)
	}
	if n, _ := dispatch(disp, client, "TTL", "missing").Integer(); n != -2 {
		t.Errorf("TTL missing = %d, want -2", n)
	}

	// Non-positive expiration removes the key.
	if n, _ := dispatch(disp, client, "EXPIRE", "k", "0").Integer(); n != 1 {
		t.Error("EXPIRE 0 should delete")
	}
	if n, _ := dispatch(disp, client, "EXISTS", "k").Integer(); n != 0 {
		t.Error("key should be gone after EXPIRE 0")
	}
}

func TestSelectIsolation(t *testing.T) {
	disp, client := newTestDispatcher(t)

	dispatch(disp, client, "SET", "k", "db0")
	if s, _ := dispatch(disp, client, "SELECT", "1").String(); s != "OK" {
		t.Fatal("SELECT 1 failed")
	}
	if !dispatch(disp, client, "GET", "k").IsNil() {
		t.Error("databases should be isolated")
	}
	if _, ok := dispatch(disp, client, "SELECT", "99").ErrString(); !ok {
		t.Error("SELECT out of range should fail")
	}
}

func TestKeysTypeRename(t *testing.T) {
	disp, client := newTestDispatcher(t)

	dispatch(disp, client, "MSET", "user:1", "a", "user:2", "b")

	items, _ := dispatch(disp, client, "KEYS", "user:*").Array()
	if len(items) != 2 {
		t.Errorf("KEYS user:* returned %d items", len(items))
	}

	if s, _ := dispatch(disp, client, "TYPE", "user:1").String(); s != "string" {
		t.Errorf("TYPE = %q", s)
	}
	if s, _ := dispatch(disp, client, "TYPE", "missing").String(); s != "none" {
		t.Errorf("TYPE missing = %q", s)
	}

	if s, _ := dispatch(disp, client, "RENAME", "user:1", "user:9").String(); s != "OK" {
		t.Error("RENAME failed")
	}
	if s, _ := dispatch(disp, client, "GET", "user:9").String(); s != "a" {
		t.Errorf("GET after RENAME = %q", s)
	}
}

func TestServerCommands(t *testing.T) {
	disp, client := newTestDispatcher(t)

	dispatch(disp, client, "MSET", "a", "1", "b", "2")
	if n, _ := dispatch(disp, client, "DBSIZE").Integer(); n != 2 {
		t.Errorf("DBSIZE = %d", n)
	}

	info, ok := dispatch(disp, client, "INFO").String()
	if !ok || !strings.Contains(info, "run_id:testrun") {
		t.Errorf("INFO = %q", info)
	}

	if s, _ := dispatch(disp, client, "FLUSHDB").String(); s != "OK" {
		t.Fatal("FLUSHDB failed")
	}
	if n, _ := dispatch(disp, client, "DBSIZE").Integer(); n != 0 {
		t.Errorf("DBSIZE after FLUSHDB = %d", n)
	}

	items, _ := dispatch(disp, client, "COMMAND").Array()
	if len(items) == 0 {
		t.Error("COMMAND should list registered commands")
	}
}

func TestEval(t *testing.T) {
	disp, client := newTestDispatcher(t)

	if n, _ := dispatch(disp, client, "EVAL", "return 1 + 1", "0").Integer(); n != 2 {
		t.Errorf("EVAL arithmetic = %d", n)
	}

	reply := dispatch(disp, client, "EVAL",
		`redis.call('SET', KEYS[1], ARGV[1]); return redis.call('GET', KEYS[1])`,
		"1", "lk", "lv")
	if s, _ := reply.String(); s != "lv" {
		t.Errorf("EVAL redis.call round trip = %+v", reply)
	}

	sha := dispatch(disp, client, "SCRIPT", "LOAD", "return 7")
	sum, _ := sha.String()
	if len(sum) != 40 {
		t.Fatalf("SCRIPT LOAD = %+v", sha)
	}
	if n, _ := dispatch(disp, client, "EVALSHA", sum, "0").Integer(); n != 7 {
		t.Error("EVALSHA should run the cached script")
	}

	items, _ := dispatch(disp, client, "SCRIPT", "EXISTS", sum, strings.Repeat("0", 40)).Array()
	if len(items) != 2 {
		t.Fatal("SCRIPT EXISTS arity")
	}
	if n, _ := items[0].Integer(); n != 1 {
		t.Error("loaded script should exist")
	}
	if n, _ := items[1].Integer(); n != 0 {
		t.Error("unknown sha should not exist")
	}
}
