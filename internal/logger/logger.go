// Package logger provides a minimal leveled logger for fsx components.
//
// The logger is intentionally simple: a process-wide level, a choice of
// text or JSON output, and printf-style helpers. Components log through
// the package functions so the daemon can configure output once at startup.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Format selects the log output encoding.
type Format int

const (
	// FormatText emits "[timestamp] [LEVEL] message" lines.
	FormatText Format = iota

	// FormatJSON emits one JSON object per line with ts/level/msg fields.
	FormatJSON
)

var (
	currentLevel  = LevelInfo
	currentFormat = FormatText
	logger        = stdlog.New(os.Stdout, "", 0)
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SetLevel sets the minimum level that will be emitted.
// Unknown level names leave the current level unchanged.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	}
}

// SetFormat selects text or JSON output.
// Unknown format names leave the current format unchanged.
func SetFormat(format string) {
	switch strings.ToLower(format) {
	case "text":
		currentFormat = FormatText
	case "json":
		currentFormat = FormatJSON
	}
}

// SetOutput redirects log output. Useful for writing to a file or
// silencing output in tests.
func SetOutput(w io.Writer) {
	logger = stdlog.New(w, "", 0)
}

func log(level Level, format string, v ...any) {
	if level < currentLevel {
		return
	}

	message := fmt.Sprintf(format, v...)

	switch currentFormat {
	case FormatJSON:
		line, err := json.Marshal(map[string]string{
			"ts":    time.Now().Format(time.RFC3339),
			"level": level.String(),
			"msg":   message,
		})
		if err != nil {
			// Fall back to text rather than dropping the record.
			logger.Printf("[%s] [%s] %s", time.Now().Format("2006-01-02 15:04:05"), level.String(), message)
			return
		}
		logger.Println(string(line))
	default:
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		logger.Printf("[%s] [%s] %s", timestamp, level.String(), message)
	}
}

func Debug(format string, v ...any) {
	log(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	log(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	log(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	log(LevelError, format, v...)
}
