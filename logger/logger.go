package logger

import (
	"log"
	"strings"
	"sync"

	klog "github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
	"github.com/kart-io/logger/option"
)

var (
	mu  sync.RWMutex
	std core.Logger
)

// Init builds the process logger. level is one of DEBUG, INFO, WARN,
// ERROR; format is json or console.
func Init(level, format string) error {
	opt := option.DefaultLogOption()
	if level != "" {
		opt.Level = strings.ToUpper(level)
	}
	if format != "" {
		opt.Format = format
	}

	l, err := klog.New(opt)
	if err != nil {
		return err
	}

	mu.Lock()
	std = l
	mu.Unlock()
	return nil
}

// Flush writes out buffered entries.
func Flush() {
	if l := current(); l != nil {
		l.Flush()
	}
}

func current() core.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

func logMessage(level, message string, args []interface{}) {
	l := current()
	if l == nil {
		// Stdout fallback until Init has run
		log.Printf("["+level+"] "+message, args...)
		return
	}

	switch level {
	case "DEBUG":
		l.Debugf(message, args...)
	case "WARN":
		l.Warnf(message, args...)
	case "ERROR":
		l.Errorf(message, args...)
	default:
		l.Infof(message, args...)
	}
}

func Info(message string, args ...interface{}) {
	logMessage("INFO", message, args)
}

func Warn(message string, args ...interface{}) {
	logMessage("WARN", message, args)
}

func Error(message string, args ...interface{}) {
	logMessage("ERROR", message, args)
}

func Debug(message string, args ...interface{}) {
	logMessage("DEBUG", message, args)
}
