// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/zyhnesmr/minidis/internal/command"
	"github.com/zyhnesmr/minidis/internal/command/commands"
	"github.com/zyhnesmr/minidis/internal/config"
	"github.com/zyhnesmr/minidis/internal/database"
	"github.com/zyhnesmr/minidis/internal/net"
	"github.com/zyhnesmr/minidis/internal/script"
	"github.com/zyhnesmr/minidis/pkg/log"
)

var Version = "0.1.0"

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("invalid configuration: %v", err)
	}
	if err := log.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatal("failed to set up logging: %v", err)
	}
	defer log.Sync()

	log.Info("minidis %s starting, pid %d", Version, os.Getpid())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	selector := database.NewSelector(cfg.Databases)
	selector.StartSweeper(ctx)

	var srv *net.Server
	info := &command.ServerInfo{
		Version:   Version,
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Clients:   func() int { return srv.ClientCount() },
	}

	dispatcher := command.NewDispatcher(selector, info)
	registerCommands(dispatcher)

	srv = net.NewServer(cfg, dispatcher)
	if err := srv.Start(); err != nil {
		log.Fatal("failed to start server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("received shutdown signal")
	cancel()
	srv.Stop()
	log.Info("minidis shutdown complete")
}

func registerCommands(disp *command.Dispatcher) {
	commands.RegisterServerCommands(disp)
	commands.RegisterKeyCommands(disp)
	commands.RegisterStringCommands(disp)
	commands.RegisterScriptCommands(disp, script.NewManager())

	log.Info("registered %d commands", len(disp.Names()))
}
