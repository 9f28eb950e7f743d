// session.go wires configuration, logging, and the audit journal into a
// Patcher for a single command invocation.
//
// session.goは1回のコマンド呼び出しのために設定、ログ、監査ジャーナルを
// Patcherに結び付けます。
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/YujiSuzuki/vitecsp/internal/audit"
	"github.com/YujiSuzuki/vitecsp/internal/config"
	"github.com/YujiSuzuki/vitecsp/internal/patcher"
)

// session holds everything a command needs to run one patch operation.
// sessionは1回のパッチ操作の実行に必要なものをすべて保持します。
type session struct {
	cfg     *config.Config
	dir     string
	audit   *audit.Logger
	patcher *patcher.Patcher
	closers []io.Closer

	// errOut is the command's stderr.
	errOut io.Writer
}

// newSession loads the configuration, applies flag overrides, and sets up
// the default slog logger on the command's stderr.
//
// newSessionは設定を読み込み、フラグによる上書きを適用し、
// コマンドのstderrにデフォルトのslogロガーを設定します。
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override config file settings.
	// フラグは設定ファイルの設定を上書きします。
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}
	if flagLogFile != "" {
		cfg.Logging.File = flagLogFile
	}

	s := &session{cfg: cfg, dir: flagDir, errOut: cmd.ErrOrStderr()}
	if s.dir == "" {
		s.dir = "."
	}

	logCloser, err := setupLogging(cmd.ErrOrStderr(), cfg.Logging)
	if err != nil {
		return nil, err
	}
	if logCloser != nil {
		s.closers = append(s.closers, logCloser)
	}

	s.audit, err = audit.New(cfg.Audit, cmd.ErrOrStderr())
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	s.closers = append(s.closers, s.audit)

	opts := patcher.OptionsFromConfig(cfg, s.audit)
	opts.DryRun = flagDryRun
	s.patcher = patcher.New(opts)

	slog.Debug("Session ready",
		"dir", s.dir,
		"candidates", cfg.Target.Candidates,
		"lock", cfg.Lock.Enabled,
		"dry_run", flagDryRun,
	)
	return s, nil
}

// close releases the audit journal and the log file in reverse order.
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			fmt.Fprintln(s.errOut, "Warning: close failed:", err)
		}
	}
	s.closers = nil
}

// parseLevel converts a config level string to slog.Level.
// Unknown values fall back to info.
//
// parseLevelは設定のレベル文字列をslog.Levelに変換します。
// 不明な値はinfoになります。
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogging installs the default slog logger: colored output on out, plus a
// plain-text file handler when cfg.File is set. The returned closer is nil when
// no file was opened.
//
// setupLoggingはデフォルトのslogロガーを設定します：outにカラー出力し、
// cfg.Fileが設定されている場合はプレーンテキストのファイルハンドラーも追加します。
// ファイルを開かなかった場合、返されるcloserはnilです。
func setupLogging(out io.Writer, cfg config.LoggingConfig) (io.Closer, error) {
	level := parseLevel(cfg.Level)
	colored := NewColoredHandler(out, level)

	if cfg.File == "" {
		slog.SetDefault(slog.New(colored))
		return nil, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	fileHandler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(&multiHandler{handlers: []slog.Handler{colored, fileHandler}}))
	return f, nil
}
