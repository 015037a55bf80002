// Package logger provides leveled, component-tagged logging for the bridge.
// Components are short tags like "irc", "ws", "bridge" so a single process
// log can be grepped per subsystem.
package logger

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLevel atomic.Int32
	std          = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	currentLevel.Store(int32(LevelInfo))
}

// SetLevel sets the global log level from a string ("debug", "info",
// "warn", "error"). Unknown values leave the level unchanged.
func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		currentLevel.Store(int32(LevelDebug))
	case "info":
		currentLevel.Store(int32(LevelInfo))
	case "warn", "warning":
		currentLevel.Store(int32(LevelWarn))
	case "error":
		currentLevel.Store(int32(LevelError))
	}
}

func enabled(l Level) bool {
	return int32(l) >= currentLevel.Load()
}

func emit(l Level, tag, component, msg string, fields map[string]interface{}) {
	if !enabled(l) {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", tag, component, msg)
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	std.Println(b.String())
}

// DebugC logs a debug message for a component.
func DebugC(component, msg string) { emit(LevelDebug, "DEBUG", component, msg, nil) }

// DebugCF logs a debug message with structured fields.
func DebugCF(component, msg string, fields map[string]interface{}) {
	emit(LevelDebug, "DEBUG", component, msg, fields)
}

// InfoC logs an info message for a component.
func InfoC(component, msg string) { emit(LevelInfo, "INFO ", component, msg, nil) }

// InfoCF logs an info message with structured fields.
func InfoCF(component, msg string, fields map[string]interface{}) {
	emit(LevelInfo, "INFO ", component, msg, fields)
}

// WarnC logs a warning for a component.
func WarnC(component, msg string) { emit(LevelWarn, "WARN ", component, msg, nil) }

// WarnCF logs a warning with structured fields.
func WarnCF(component, msg string, fields map[string]interface{}) {
	emit(LevelWarn, "WARN ", component, msg, fields)
}

// ErrorC logs an error for a component.
func ErrorC(component, msg string) { emit(LevelError, "ERROR", component, msg, nil) }

// ErrorCF logs an error with structured fields.
func ErrorCF(component, msg string, fields map[string]interface{}) {
	emit(LevelError, "ERROR", component, msg, fields)
}
