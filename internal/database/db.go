// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package database

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrKeyNotFound = errors.New("no such key")
	ErrNotInteger  = errors.New("value is not an integer or out of range")
)

// entry is one stored value. A zero expireAt means the key never
// expires.
type entry struct {
	value    []byte
	expireAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !e.expireAt.After(now)
}

// DB is one logical keyspace holding string values.
type DB struct {
	id   int
	mu   sync.RWMutex
	keys map[string]*entry
}

// NewDB creates an empty database
func NewDB(id int) *DB {
	return &DB{
		id:   id,
		keys: make(map[string]*entry),
	}
}

// ID returns the database index
func (db *DB) ID() int {
	return db.id
}

// lookup returns the live entry for key, lazily deleting it when
// expired. Callers must hold db.mu for writing.
func (db *DB) lookup(key string) (*entry, bool) {
	e, ok := db.keys[key]
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		delete(db.keys, key)
		return nil, false
	}
	return e, true
}

// Get returns the value stored at key
func (db *DB) Get(key string) ([]byte, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(key)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value at key, clearing any existing expiration
func (db *DB) Set(key string, value []byte) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.keys[key] = &entry{value: value}
}

// SetWithTTL stores value at key with a relative expiration
func (db *DB) SetWithTTL(key string, value []byte, ttl time.Duration) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.keys[key] = &entry{value: value, expireAt: time.Now().Add(ttl)}
}

// SetNX stores value only if key does not exist
func (db *DB) SetNX(key string, value []byte) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.lookup(key); ok {
		return false
	}
	db.keys[key] = &entry{value: value}
	return true
}

// SetXX stores value only if key already exists, keeping its expiration
func (db *DB) SetXX(key string, value []byte) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(key)
	if !ok {
		return false
	}
	e.value = value
	return true
}

// GetSet stores value and returns the previous value, if any
func (db *DB) GetSet(key string, value []byte) ([]byte, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	old, ok := db.lookup(key)
	db.keys[key] = &entry{value: value}
	if !ok {
		return nil, false
	}
	return old.value, true
}

// Append appends value to the string at key and returns the new length
func (db *DB) Append(key string, value []byte) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(key)
	if !ok {
		db.keys[key] = &entry{value: value}
		return len(value)
	}
	e.value = append(e.value, value...)
	return len(e.value)
}

// StrLen returns the length of the string at key
func (db *DB) StrLen(key string) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(key)
	if !ok {
		return 0
	}
	return len(e.value)
}

// IncrBy adds delta to the integer at key and returns the new value.
// A missing key counts as zero.
func (db *DB) IncrBy(key string, delta int64) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(key)
	if !ok {
		db.keys[key] = &entry{value: []byte(strconv.FormatInt(delta, 10))}
		return delta, nil
	}

	current, err := strconv.ParseInt(string(e.value), 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	// Overflow check
	next := current + delta
	if (delta > 0 && next < current) || (delta < 0 && next > current) {
		return 0, ErrNotInteger
	}
	e.value = []byte(strconv.FormatInt(next, 10))
	return next, nil
}

// Delete removes key and reports whether it existed
func (db *DB) Delete(key string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.lookup(key); !ok {
		return false
	}
	delete(db.keys, key)
	return true
}

// Exists reports whether key exists
func (db *DB) Exists(key string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, ok := db.lookup(key)
	return ok
}

// Rename moves the value (and expiration) at src to dst
func (db *DB) Rename(src, dst string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(src)
	if !ok {
		return ErrKeyNotFound
	}
	delete(db.keys, src)
	db.keys[dst] = e
	return nil
}

// ExpireAt sets an absolute expiration on key
func (db *DB) ExpireAt(key string, at time.Time) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(key)
	if !ok {
		return false
	}
	e.expireAt = at
	return true
}

// TTL returns the remaining time to live of key. hasKey reports whether
// the key exists, hasTTL whether it carries an expiration.
func (db *DB) TTL(key string) (ttl time.Duration, hasKey, hasTTL bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(key)
	if !ok {
		return 0, false, false
	}
	if e.expireAt.IsZero() {
		return 0, true, false
	}
	return time.Until(e.expireAt), true, true
}

// Persist removes the expiration from key and reports whether one was
// removed
func (db *DB) Persist(key string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.lookup(key)
	if !ok || e.expireAt.IsZero() {
		return false
	}
	e.expireAt = time.Time{}
	return true
}

// Keys returns all live keys matching pattern
func (db *DB) Keys(pattern string) []string {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now()
	matched := make([]string, 0)
	for key, e := range db.keys {
		if e.expired(now) {
			continue
		}
		if matchPattern(key, pattern) {
			matched = append(matched, key)
		}
	}
	return matched
}

// Size returns the number of live keys
func (db *DB) Size() int {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now()
	n := 0
	for _, e := range db.keys {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Flush removes all keys
func (db *DB) Flush() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.keys = make(map[string]*entry)
}

// expireCycle removes up to limit expired keys and returns how many
// were removed
func (db *DB) expireCycle(limit int) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range db.keys {
		if removed >= limit {
			break
		}
		if e.expired(now) {
			delete(db.keys, key)
			removed++
		}
	}
	return removed
}

// matchPattern implements the glob subset KEYS supports: "*" wildcards
// plus literal text.
func matchPattern(key, pattern string) bool {
	if pattern == "*" {
		return true
	}

	if len(pattern) > 1 && pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		return strings.Contains(key, pattern[1:len(pattern)-1])
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(key, pattern[:len(pattern)-1])
	}
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(key, pattern[1:])
	}

	return key == pattern
}
