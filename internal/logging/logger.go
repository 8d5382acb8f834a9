package logging

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slyt3/Gyre/internal/assert"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
	levelCritical
)

const maxMessageLen = 2048

// Fields captures structured context for JSON log entries.
// RunID and RecordID tie a line back to the journal.
type Fields struct {
	Component string `json:"component,omitempty"`
	Op        string `json:"op,omitempty"`
	RunID     string `json:"run_id,omitempty"`
	RecordID  string `json:"record_id,omitempty"`
	Value     string `json:"value,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Path      string `json:"path,omitempty"`
	Error     string `json:"error,omitempty"`
}

type entry struct {
	Timestamp string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"msg"`
	Fields
}

var (
	levelOnce sync.Once
	minLevel  atomic.Int32
)

func init() {
	log.SetFlags(0)
	minLevel.Store(levelInfo)
}

// SetLevel overrides the minimum level picked up from GYRE_LOG_LEVEL.
// Unknown names fall back to info.
func SetLevel(level string) {
	levelOnce.Do(func() {})
	minLevel.Store(int32(levelValue(strings.ToLower(level))))
}

// Debug logs a debug-level message.
func Debug(msg string, fields Fields) { logWithLevel("debug", msg, fields) }

// Info logs an info-level message. Default level if GYRE_LOG_LEVEL is unset.
func Info(msg string, fields Fields) { logWithLevel("info", msg, fields) }

// Warn logs recoverable conditions such as dropped journal records.
func Warn(msg string, fields Fields) { logWithLevel("warn", msg, fields) }

// Error logs failures that need attention but do not stop the service.
func Error(msg string, fields Fields) { logWithLevel("error", msg, fields) }

// Critical logs failures that leave the service unhealthy.
func Critical(msg string, fields Fields) { logWithLevel("critical", msg, fields) }

func logWithLevel(level string, msg string, fields Fields) {
	if err := assert.Check(msg != "", "log message must not be empty"); err != nil {
		return
	}
	if err := assert.Check(len(msg) <= maxMessageLen, "log message too large: %d", len(msg)); err != nil {
		return
	}
	if !shouldLog(level) {
		return
	}

	out := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Message:   msg,
		Fields:    fields,
	}
	payload, err := json.Marshal(out)
	if err != nil {
		log.Printf("{\"level\":\"error\",\"msg\":\"log_marshal_failed\",\"error\":%q}", err.Error())
		return
	}
	log.Print(string(payload))
}

func shouldLog(level string) bool {
	levelOnce.Do(func() {
		envLevel := strings.ToLower(os.Getenv("GYRE_LOG_LEVEL"))
		if envLevel == "" {
			envLevel = "info"
		}
		minLevel.Store(int32(levelValue(envLevel)))
	})
	return int32(levelValue(level)) >= minLevel.Load()
}

func levelValue(level string) int {
	switch level {
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	case "critical":
		return levelCritical
	default:
		return levelInfo
	}
}
