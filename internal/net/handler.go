// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/zyhnesmr/minidis/internal/protocol/resp"
	"github.com/zyhnesmr/minidis/internal/transport"
	"github.com/zyhnesmr/minidis/pkg/log"
)

// Handle runs the request loop for one client until the connection
// ends. idleTimeout of zero disables the per-read deadline.
func Handle(ctx context.Context, client *Client, dispatcher Dispatcher, idleTimeout time.Duration) {
	tr := client.Transport()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if idleTimeout > 0 {
			_ = client.SetReadDeadline(time.Now().Add(idleTimeout))
		}

		unit, err := tr.ReadUnit()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				// Peer closed cleanly between units.
			case errors.Is(err, transport.ErrResetMidFrame):
				log.Warn("client %s closed mid-frame", client.RemoteAddr())
			case isProtocolError(err):
				// The stream is desynchronized; tell the client
				// best-effort, then drop it.
				log.Warn("protocol error from %s: %v", client.RemoteAddr(), err)
				_ = tr.WriteUnit(resp.NewError("ERR Protocol error: " + err.Error()))
			default:
				log.Debug("read error from %s: %v", client.RemoteAddr(), err)
			}
			return
		}

		name, args, err := unit.Command()
		if err != nil {
			if werr := tr.WriteUnit(resp.NewError("ERR " + err.Error())); werr != nil {
				return
			}
			continue
		}

		if strings.ToUpper(name) == "QUIT" {
			_ = tr.WriteUnit(resp.NewSimpleString("OK"))
			return
		}

		reply := dispatcher.Dispatch(ctx, client, name, args)
		if reply == nil {
			reply = resp.NewError("ERR nil reply")
		}

		// The unit write path refuses aggregates; serialize those
		// here and send them as raw bytes.
		if reply.Type == resp.TypeArray {
			err = tr.WriteRaw(reply.Marshal())
		} else {
			err = tr.WriteUnit(reply)
		}
		if err != nil {
			log.Debug("write error to %s: %v", client.RemoteAddr(), err)
			return
		}
	}
}

func isProtocolError(err error) bool {
	return errors.Is(err, resp.ErrInvalidSyntax) ||
		errors.Is(err, resp.ErrInvalidType) ||
		errors.Is(err, resp.ErrCRLFExpected) ||
		errors.Is(err, resp.ErrBulkTooBig)
}
