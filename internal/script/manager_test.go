// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"testing"

	"github.com/zyhnesmr/minidis/internal/protocol/resp"
)

func noCall(name string, args []string) *resp.Message {
	return resp.NewError("ERR no commands in this test")
}

func TestLoadExists(t *testing.T) {
	m := NewManager()

	sum := m.Load("return 1")
	if len(sum) != 40 {
		t.Fatalf("sha length = %d", len(sum))
	}
	if !m.Exists(sum) {
		t.Error("loaded script should exist")
	}
	if m.Exists("0000000000000000000000000000000000000000") {
		t.Error("unknown sha should not exist")
	}

	m.Flush()
	if m.Exists(sum) {
		t.Error("flushed script should not exist")
	}
}

func TestRunReturnKinds(t *testing.T) {
	m := NewManager()

	tests := []struct {
		src  string
		want *resp.Message
	}{
		{"return 1 + 2", resp.NewInteger(3)},
		{"return 3.7", resp.NewInteger(3)}, // numbers truncate
		{"return 'hi'", resp.NewBulkStringFromString("hi")},
		{"return true", resp.NewInteger(1)},
		{"return false", resp.NewNil()},
		{"return nil", resp.NewNil()},
		{"return {err='boom'}", resp.NewError("boom")},
		{"return {ok='fine'}", resp.NewSimpleString("fine")},
		{"return redis.status_reply('yes')", resp.NewSimpleString("yes")},
	}

	for _, tt := range tests {
		got, err := m.Run(tt.src, nil, nil, noCall)
		if err != nil {
			t.Errorf("Run(%q) failed: %v", tt.src, err)
			continue
		}
		if got.Type != tt.want.Type {
			t.Errorf("Run(%q) type = %c, want %c", tt.src, got.Type, tt.want.Type)
			continue
		}
		if got.Type != resp.TypeBulkString && got.Value != tt.want.Value {
			t.Errorf("Run(%q) = %+v, want %+v", tt.src, got, tt.want)
		}
	}
}

func TestRunKeysArgv(t *testing.T) {
	m := NewManager()

	got, err := m.Run("return KEYS[1] .. ARGV[1]", []string{"k"}, []string{"v"}, noCall)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s, _ := got.String(); s != "kv" {
		t.Errorf("KEYS/ARGV = %q", s)
	}
}

func TestRunTableReturn(t *testing.T) {
	m := NewManager()

	got, err := m.Run("return {1, 'two', 3}", nil, nil, noCall)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	items, ok := got.Array()
	if !ok || len(items) != 3 {
		t.Fatalf("table return = %+v", got)
	}
	if n, _ := items[0].Integer(); n != 1 {
		t.Errorf("items[0] = %+v", items[0])
	}
	if s, _ := items[1].String(); s != "two" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestRunCall(t *testing.T) {
	m := NewManager()

	var gotName string
	var gotArgs []string
	call := func(name string, args []string) *resp.Message {
		gotName = name
		gotArgs = args
		return resp.NewBulkStringFromString("stored")
	}

	got, err := m.Run("return redis.call('GET', KEYS[1])", []string{"k"}, nil, call)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if gotName != "GET" || len(gotArgs) != 1 || gotArgs[0] != "k" {
		t.Errorf("call dispatched %s %v", gotName, gotArgs)
	}
	if s, _ := got.String(); s != "stored" {
		t.Errorf("call result = %q", s)
	}
}

func TestRunBadScript(t *testing.T) {
	m := NewManager()
	if _, err := m.Run("this is not lua", nil, nil, noCall); err == nil {
		t.Error("syntax error should be reported")
	}
}
