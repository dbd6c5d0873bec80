// 指示: miu200521358
// Package mlogging はコンソールとローテーションファイルへ出力するロガーを提供する。
package mlogging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
	"github.com/natefinch/lumberjack"
	"golang.org/x/term"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxAgeDays = 7
	defaultMaxBackups = 3
	timeLayout        = "15:04:05.000"
)

// Options はロガー生成設定を表す。
type Options struct {
	Level      logging.LogLevel
	Verbose    []logging.VerboseIndex
	Console    io.Writer
	FilePath   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	// NoColor は端末判定に関係なく装飾を無効にする。
	NoColor bool
}

// Logger は logging.ILogger の実装。
type Logger struct {
	mu      sync.Mutex
	level   logging.LogLevel
	verbose map[logging.VerboseIndex]struct{}
	console io.Writer
	file    *lumberjack.Logger
	colored bool
	styles  map[logging.LogLevel]lipgloss.Style
}

// NewLogger はロガーを生成する。
func NewLogger(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	logger := &Logger{
		level:   opts.Level,
		verbose: map[logging.VerboseIndex]struct{}{},
		console: console,
		colored: !opts.NoColor && isTerminal(console),
		styles:  newLevelStyles(),
	}
	for _, index := range opts.Verbose {
		logger.verbose[index] = struct{}{}
	}
	if strings.TrimSpace(opts.FilePath) != "" {
		logger.file = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    positiveOr(opts.MaxSizeMB, defaultMaxSizeMB),
			MaxAge:     positiveOr(opts.MaxAgeDays, defaultMaxAgeDays),
			MaxBackups: positiveOr(opts.MaxBackups, defaultMaxBackups),
		}
	}
	return logger
}

// newLevelStyles はレベル別の表示スタイルを生成する。
func newLevelStyles() map[logging.LogLevel]lipgloss.Style {
	return map[logging.LogLevel]lipgloss.Style{
		logging.LOG_LEVEL_DEBUG: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		logging.LOG_LEVEL_INFO:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		logging.LOG_LEVEL_WARN:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		logging.LOG_LEVEL_ERROR: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// isTerminal は出力先が端末か判定する。
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func positiveOr(value int, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(msg string, params ...any) {
	l.write(logging.LOG_LEVEL_DEBUG, "", msg, params...)
}

// Info は情報ログを出力する。
func (l *Logger) Info(msg string, params ...any) {
	l.write(logging.LOG_LEVEL_INFO, "", msg, params...)
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(msg string, params ...any) {
	l.write(logging.LOG_LEVEL_WARN, "", msg, params...)
}

// Error はエラーログを出力する。
func (l *Logger) Error(msg string, params ...any) {
	l.write(logging.LOG_LEVEL_ERROR, "", msg, params...)
}

// Verbose は有効な対象のみ詳細ログを出力する。
func (l *Logger) Verbose(index logging.VerboseIndex, msg string, params ...any) {
	if !l.IsVerboseEnabled(index) {
		return
	}
	l.write(logging.LOG_LEVEL_DEBUG, "V", msg, params...)
}

// IsVerboseEnabled は詳細ログ対象が有効か返す。
func (l *Logger) IsVerboseEnabled(index logging.VerboseIndex) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.verbose[index]
	return ok
}

// SetLevel はログレベルを設定する。
func (l *Logger) SetLevel(level logging.LogLevel) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level は現在のログレベルを返す。
func (l *Logger) Level() logging.LogLevel {
	if l == nil {
		return logging.LOG_LEVEL_INFO
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Close はファイル出力を閉じる。
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// write は1行分のログを書き出す。詳細ログはレベル判定を行わない。
func (l *Logger) write(level logging.LogLevel, tag string, msg string, params ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if tag == "" && level < l.level {
		return
	}

	body := msg
	if len(params) > 0 {
		body = fmt.Sprintf(msg, params...)
	}
	label := "[" + level.String() + "]"
	if tag != "" {
		label = "[" + tag + "]"
	}
	stamp := time.Now().Format(timeLayout)

	consoleLabel := label
	if l.colored {
		consoleLabel = l.styles[level].Render(label)
	}
	fmt.Fprintf(l.console, "%s %s %s\n", stamp, consoleLabel, body)
	if l.file != nil {
		fmt.Fprintf(l.file, "%s %s %s\n", stamp, label, body)
	}
}
