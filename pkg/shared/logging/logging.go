// 指示: miu200521358
// Package logging はロガー契約と既定ロガーの保持を提供する。
package logging

import (
	"strings"
	"sync"
)

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	// LOG_LEVEL_DEBUG はデバッグレベル。
	LOG_LEVEL_DEBUG LogLevel = iota
	// LOG_LEVEL_INFO は情報レベル。
	LOG_LEVEL_INFO
	// LOG_LEVEL_WARN は警告レベル。
	LOG_LEVEL_WARN
	// LOG_LEVEL_ERROR はエラーレベル。
	LOG_LEVEL_ERROR
)

// VerboseIndex は詳細ログの出力対象を表す。
type VerboseIndex int

const (
	// VERBOSE_INDEX_GRAPH はグラフ構築の詳細ログ。
	VERBOSE_INDEX_GRAPH VerboseIndex = iota
	// VERBOSE_INDEX_MATCH は対応付けの詳細ログ。
	VERBOSE_INDEX_MATCH
	// VERBOSE_INDEX_SOLVE は配置計算の詳細ログ。
	VERBOSE_INDEX_SOLVE
)

// ILogger はログ出力契約を表す。
type ILogger interface {
	Debug(msg string, params ...any)
	Info(msg string, params ...any)
	Warn(msg string, params ...any)
	Error(msg string, params ...any)
	Verbose(index VerboseIndex, msg string, params ...any)
	IsVerboseEnabled(index VerboseIndex) bool
	SetLevel(level LogLevel)
	Level() LogLevel
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   ILogger
)

// DefaultLogger は既定ロガーを返す。未設定時はnil。
func DefaultLogger() ILogger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを設定する。
func SetDefaultLogger(logger ILogger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}

// ParseLogLevel は文字列からログレベルを解決する。
func ParseLogLevel(value string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LOG_LEVEL_DEBUG, true
	case "", "info":
		return LOG_LEVEL_INFO, true
	case "warn", "warning":
		return LOG_LEVEL_WARN, true
	case "error":
		return LOG_LEVEL_ERROR, true
	}
	return LOG_LEVEL_INFO, false
}

// ParseVerboseIndex は文字列から詳細ログ対象を解決する。
func ParseVerboseIndex(value string) (VerboseIndex, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "graph":
		return VERBOSE_INDEX_GRAPH, true
	case "match":
		return VERBOSE_INDEX_MATCH, true
	case "solve":
		return VERBOSE_INDEX_SOLVE, true
	}
	return 0, false
}

// String はログレベル名を返す。
func (l LogLevel) String() string {
	switch l {
	case LOG_LEVEL_DEBUG:
		return "DEBUG"
	case LOG_LEVEL_INFO:
		return "INFO"
	case LOG_LEVEL_WARN:
		return "WARN"
	case LOG_LEVEL_ERROR:
		return "ERROR"
	}
	return "UNKNOWN"
}
