// Copyright 2026 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log provides the process-wide logger. The API is
// printf-style; zap does the actual work.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

func init() {
	// Usable before Init for early startup errors and tests.
	logger, _ := zap.NewDevelopment(zap.AddCallerSkip(1))
	zap.ReplaceGlobals(logger)
	sugar = logger.Sugar()
}

// Init configures the global logger from the server config. An empty
// file logs to stderr.
func Init(level, file string) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	if file != "" {
		cfg.OutputPaths = []string{file}
		cfg.ErrorOutputPaths = []string{file}
	}

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	sugar = logger.Sugar()
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug", "verbose":
		return zapcore.DebugLevel
	case "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		// "notice" and anything unrecognized
		return zapcore.InfoLevel
	}
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	sugar.Debugf(format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	sugar.Infof(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	sugar.Warnf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	sugar.Errorf(format, args...)
}

// Fatal logs a fatal message and exits
func Fatal(format string, args ...interface{}) {
	sugar.Fatalf(format, args...)
}

// Sync flushes buffered log entries
func Sync() {
	_ = sugar.Sync()
}
