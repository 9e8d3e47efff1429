// Package log provides package-level logging backed by zap
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var logger *zap.SugaredLogger

// Init sets up the package-level logger. Call once at program start.
func Init(debug bool) error {
	var base *zap.Logger
	var err error
	if debug {
		base, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		base, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}
	logger = base.Sugar()
	return nil
}

func get() *zap.SugaredLogger {
	if logger == nil {
		base, _ := zap.NewProduction(zap.AddCallerSkip(1))
		logger = base.Sugar()
	}
	return logger
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func Debugf(template string, args ...interface{}) { get().Debugf(template, args...) }
func Infof(template string, args ...interface{})  { get().Infof(template, args...) }
func Warnf(template string, args ...interface{})  { get().Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { get().Errorf(template, args...) }
func Fatalf(template string, args ...interface{}) { get().Fatalf(template, args...) }

func Info(args ...interface{})  { get().Info(args...) }
func Warn(args ...interface{})  { get().Warn(args...) }
func Error(args ...interface{}) { get().Error(args...) }
