// Package audit provides the audit journal for vitecsp.
// It records every invocation that mutated (or declined to mutate) a config file,
// so an operator can map backups back to the change that produced them.
//
// auditパッケージはvitecspの監査ジャーナルを提供します。
// 設定ファイルを変更した（または変更しなかった）すべての呼び出しを記録し、
// オペレーターがバックアップとそれを生んだ変更を対応付けられるようにします。
package audit

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/YujiSuzuki/vitecsp/internal/config"
)

// EventType represents the type of audit event.
// EventTypeは監査イベントのタイプを表します。
type EventType string

const (
	// EventPatch is logged when the policy block and server headers are inserted.
	// EventPatchはポリシーブロックとサーバーヘッダーが挿入された時にログ記録されます。
	EventPatch EventType = "patch"

	// EventAddSource is logged when a source is appended to a directive.
	// EventAddSourceはディレクティブにソースが追加された時にログ記録されます。
	EventAddSource EventType = "add_source"

	// EventSkipped is logged when a run ends without touching the file.
	// EventSkippedは実行がファイルに触れずに終了した時にログ記録されます。
	EventSkipped EventType = "skipped"
)

// Result represents the outcome of an operation.
// Resultは操作の結果を表します。
type Result string

const (
	ResultSuccess Result = "success"
	ResultSkipped Result = "skipped"
	ResultError   Result = "error"
)

// Event represents an audit event.
// Eventは監査イベントを表します。
type Event struct {
	// Type is the type of audit event.
	Type EventType

	// File is the patched config file.
	// Fileはパッチ対象の設定ファイルです。
	File string

	// Backup is the backup written before the mutation, if any.
	// Backupは変更前に書き込まれたバックアップです（存在する場合）。
	Backup string

	// Result is the outcome of the operation.
	Result Result

	// Details contains additional event-specific information (directive, source, warnings).
	// Detailsは追加のイベント固有情報を含みます（ディレクティブ、ソース、警告）。
	Details map[string]any

	// DurationMs is the operation duration in milliseconds.
	DurationMs int64

	// ErrorMessage contains the error message if Result is error.
	// ErrorMessageはResultがerrorの場合のエラーメッセージです。
	ErrorMessage string
}

// Logger is the audit logger.
// Loggerは監査ロガーです。
type Logger struct {
	cfg    config.AuditConfig
	logger *slog.Logger
	mu     sync.Mutex
	file   *os.File
}

// New creates an audit logger. Records go to cfg.File when set, otherwise to fallback.
// A disabled config yields a logger that drops every event.
//
// Newは監査ロガーを作成します。cfg.Fileが設定されていればそこへ、なければfallbackへ出力します。
// 無効な設定ではすべてのイベントを破棄するロガーになります。
func New(cfg config.AuditConfig, fallback io.Writer) (*Logger, error) {
	l := &Logger{cfg: cfg}
	if !cfg.Enabled {
		return l, nil
	}

	output := fallback
	if output == nil {
		output = os.Stderr
	}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		l.file = f
		output = f
	}

	l.logger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return l, nil
}

// Close closes the audit logger.
// Closeは監査ロガーをクローズします。
func (l *Logger) Close() error {
	if l != nil && l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Log records an audit event.
// Logは監査イベントを記録します。
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil || !l.cfg.Enabled || l.logger == nil {
		return
	}

	// Check if this event type should be logged
	// このイベントタイプをログ記録すべきかチェック
	if !l.shouldLog(event.Type) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	attrs := []any{
		slog.String("event_type", string(event.Type)),
	}

	if event.File != "" {
		attrs = append(attrs, slog.String("file", event.File))
	}
	if event.Backup != "" {
		attrs = append(attrs, slog.String("backup", event.Backup))
	}
	if event.Result != "" {
		attrs = append(attrs, slog.String("result", string(event.Result)))
	}
	if event.DurationMs > 0 {
		attrs = append(attrs, slog.Int64("duration_ms", event.DurationMs))
	}
	if event.ErrorMessage != "" {
		attrs = append(attrs, slog.String("error", event.ErrorMessage))
	}
	if len(event.Details) > 0 {
		attrs = append(attrs, slog.Any("details", event.Details))
	}

	l.logger.InfoContext(ctx, "audit_event", attrs...)
}

// shouldLog checks if an event type should be logged based on config.
// shouldLogは設定に基づいてイベントタイプをログ記録すべきかチェックします。
func (l *Logger) shouldLog(eventType EventType) bool {
	switch eventType {
	case EventPatch:
		return l.cfg.Events.Patch
	case EventAddSource:
		return l.cfg.Events.AddSource
	case EventSkipped:
		return l.cfg.Events.Skipped
	default:
		return true
	}
}

// MeasureDuration is a helper to measure operation duration.
// MeasureDurationは操作の所要時間を計測するヘルパーです。
func MeasureDuration(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
