// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/zyhnesmr/minidis/internal/config"
	"github.com/zyhnesmr/minidis/internal/protocol/resp"
	"github.com/zyhnesmr/minidis/pkg/log"
)

// Dispatcher routes one decoded command to its handler and returns the
// reply unit.
type Dispatcher interface {
	Dispatch(ctx context.Context, client *Client, name string, args []string) *resp.Message
}

// Server accepts TCP connections and runs one handler goroutine per
// client.
type Server struct {
	cfg        *config.Config
	dispatcher Dispatcher

	listener net.Listener
	limiter  *rate.Limiter

	mu      sync.Mutex
	clients map[uint64]*Client
	nextID  atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a server; Start must be called to begin accepting
func NewServer(cfg *config.Config, dispatcher Dispatcher) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	var limiter *rate.Limiter
	if cfg.AcceptRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptBurst)
	}

	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		limiter:    limiter,
		clients:    make(map[uint64]*Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening and accepting connections
func (s *Server) Start() error {
	addr := s.cfg.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	log.Info("ready to accept connections at %s", addr)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener and all client connections, then waits for
// the handler goroutines to finish
func (s *Server) Stop() {
	log.Info("server stopping")

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	log.Info("server stopped")
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(s.ctx); err != nil {
				return
			}
		}

		raw, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			log.Error("accept error: %v", err)
			continue
		}

		s.mu.Lock()
		if s.cfg.MaxClients > 0 && len(s.clients) >= s.cfg.MaxClients {
			s.mu.Unlock()
			log.Warn("max clients reached (%d), rejecting %s", s.cfg.MaxClients, raw.RemoteAddr())
			raw.Close()
			continue
		}
		s.mu.Unlock()

		if tcpConn, ok := raw.(*net.TCPConn); ok && s.cfg.TCPKeepalive > 0 {
			tcpConn.SetKeepAlive(true)
			tcpConn.SetKeepAlivePeriod(time.Duration(s.cfg.TCPKeepalive) * time.Second)
		}

		client := NewClient(raw, s.nextID.Add(1))

		s.mu.Lock()
		s.clients[client.ID()] = client
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serveClient(client)
	}
}

func (s *Server) serveClient(client *Client) {
	defer func() {
		s.wg.Done()

		s.mu.Lock()
		delete(s.clients, client.ID())
		s.mu.Unlock()

		client.Close()
		log.Debug("connection closed: %s", client.RemoteAddr())
	}()

	log.Debug("new connection from %s", client.RemoteAddr())

	Handle(s.ctx, client, s.dispatcher, time.Duration(s.cfg.Timeout)*time.Second)
}

// Addr returns the listener address once the server has started
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
