// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"fmt"
	"time"
)

const (
	sweepInterval  = 100 * time.Millisecond
	sweepKeysPerDB = 20
)

// Selector holds the fixed set of logical databases
type Selector struct {
	dbs []*DB
}

// NewSelector creates count empty databases
func NewSelector(count int) *Selector {
	dbs := make([]*DB, count)
	for i := range dbs {
		dbs[i] = NewDB(i)
	}
	return &Selector{dbs: dbs}
}

// Get returns the database with the given index
func (s *Selector) Get(index int) (*DB, error) {
	if index < 0 || index >= len(s.dbs) {
		return nil, fmt.Errorf("DB index is out of range")
	}
	return s.dbs[index], nil
}

// Count returns the number of databases
func (s *Selector) Count() int {
	return len(s.dbs)
}

// TotalKeys returns the number of live keys across all databases
func (s *Selector) TotalKeys() int {
	total := 0
	for _, db := range s.dbs {
		total += db.Size()
	}
	return total
}

// FlushAll removes all keys from all databases
func (s *Selector) FlushAll() {
	for _, db := range s.dbs {
		db.Flush()
	}
}

// StartSweeper runs periodic expired-key removal until ctx is done.
// Lazy expiration on access already hides expired keys; the sweeper
// reclaims memory for keys nothing reads anymore.
func (s *Selector) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, db := range s.dbs {
					db.expireCycle(sweepKeysPerDB)
				}
			}
		}
	}()
}
