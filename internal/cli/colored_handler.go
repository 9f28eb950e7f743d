// colored_handler.go implements the slog handlers behind vitecsp's diagnostics:
// a colored line handler for the terminal and a fan-out to an optional log file.
//
// colored_handler.goはvitecspの診断出力を担うslogハンドラーを実装します：
// ターミナル用のカラー行ハンドラーと、任意のログファイルへの分配です。
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for terminal output.
// ターミナル出力用のANSIカラーコード。
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ColoredHandler is a slog.Handler that outputs colored log messages to terminals.
// Colors are only applied when the output is a TTY.
//
// ColoredHandlerはターミナルにカラーログメッセージを出力するslog.Handlerです。
// 出力がTTYの場合のみ色が適用されます。
type ColoredHandler struct {
	out     io.Writer
	level   slog.Level
	colored bool

	// attrs are pre-rendered " key=value" pairs from WithAttrs.
	// attrsはWithAttrsで事前にレンダリングされた" key=value"の組です。
	attrs string
	group string

	// mu is shared by handlers derived from the same root.
	mu *sync.Mutex
}

// NewColoredHandler creates a new ColoredHandler.
// If out is a terminal, colors will be enabled.
//
// NewColoredHandlerは新しいColoredHandlerを作成します。
// outがターミナルの場合、色が有効になります。
func NewColoredHandler(out io.Writer, level slog.Level) *ColoredHandler {
	colored := false
	if f, ok := out.(*os.File); ok {
		// Check if the output is a terminal
		// 出力がターミナルかどうかをチェック
		fi, err := f.Stat()
		if err == nil {
			colored = (fi.Mode() & os.ModeCharDevice) != 0
		}
	}

	return &ColoredHandler{
		out:     out,
		level:   level,
		colored: colored,
		mu:      &sync.Mutex{},
	}
}

// Enabled implements slog.Handler.Enabled.
// EnabledはslogHandler.Enabledを実装します。
func (h *ColoredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.Handle.
// Line format: "<time> <LEVEL> <message> key=value ...".
//
// HandleはslogHandler.Handleを実装します。
// 行フォーマット: "<時刻> <レベル> <メッセージ> key=value ..."。
func (h *ColoredHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	timeStr := r.Time.Format(time.DateTime)
	levelStr, levelColor := h.levelInfo(r.Level)

	if h.colored {
		// time in gray, level in color, message in default
		// 時間はグレー、レベルは色付き、メッセージはデフォルト
		fmt.Fprintf(&b, "%s%s%s %s%-5s%s %s",
			colorGray, timeStr, colorReset,
			levelColor, levelStr, colorReset,
			r.Message,
		)
	} else {
		fmt.Fprintf(&b, "%s %-5s %s", timeStr, levelStr, r.Message)
	}

	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(h.renderAttr(a))
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// WithAttrs implements slog.Handler.WithAttrs.
// WithAttrsはslog.Handler.WithAttrsを実装します。
func (h *ColoredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		b.WriteString(h.renderAttr(a))
	}
	h2.attrs = b.String()
	return &h2
}

// WithGroup implements slog.Handler.WithGroup.
// Keys of later attributes are prefixed with "group.".
//
// WithGroupはslog.Handler.WithGroupを実装します。
// 以降の属性のキーには"group."が前置されます。
func (h *ColoredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = h.group + name + "."
	return &h2
}

// renderAttr formats one attribute as " key=value".
func (h *ColoredHandler) renderAttr(a slog.Attr) string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return ""
	}
	key := h.group + a.Key
	if h.colored {
		return fmt.Sprintf(" %s%s%s=%v", colorCyan, key, colorReset, a.Value)
	}
	return fmt.Sprintf(" %s=%v", key, a.Value)
}

// levelInfo returns the level string and color for a given slog.Level.
// levelInfoは指定されたslog.Levelのレベル文字列と色を返します。
func (h *ColoredHandler) levelInfo(level slog.Level) (string, string) {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG", colorBlue
	case level < slog.LevelWarn:
		return "INFO", colorGreen
	case level < slog.LevelError:
		return "WARN", colorYellow
	default:
		return "ERROR", colorRed
	}
}

// multiHandler fans a record out to several handlers: the colored stderr
// handler and the plain-text --log-file handler.
//
// multiHandlerはレコードを複数のハンドラーに分配します：
// カラーのstderrハンドラーとプレーンテキストの--log-fileハンドラーです。
type multiHandler struct {
	handlers []slog.Handler
}

// Enabled implements slog.Handler.Enabled.
// Returns true if any handler is enabled for the level.
//
// EnabledはslogHandler.Enabledを実装します。
// いずれかのハンドラーがレベルに対して有効な場合にtrueを返します。
func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler.Handle.
// Every enabled handler receives the record; the first error is returned.
//
// HandleはslogHandler.Handleを実装します。
// 有効なすべてのハンドラーがレコードを受け取り、最初のエラーを返します。
func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs implements slog.Handler.WithAttrs.
// WithAttrsはslog.Handler.WithAttrsを実装します。
func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

// WithGroup implements slog.Handler.WithGroup.
// WithGroupはslog.Handler.WithGroupを実装します。
func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
