// Package patcher runs one patch invocation against a Vite config file:
// locate, lock, read, back up, mutate, and write back.
//
// patcherパッケージはVite設定ファイルに対する1回のパッチ呼び出しを実行します：
// 検索、ロック、読み込み、バックアップ、変更、書き戻し。
//
// State machine per invocation:
// 呼び出しごとの状態遷移：
//
//	Located -> AlreadyPatched (halt)
//	Located -> NotPatched -> BackedUp -> Mutated -> Written -> Done
//	(no candidate) -> NotFound (halt)
//
// Any failure ends the invocation; nothing is retried.
// いずれかの失敗で呼び出しは終了し、再試行は行いません。
package patcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/YujiSuzuki/vitecsp/internal/audit"
	"github.com/YujiSuzuki/vitecsp/internal/config"
	"github.com/YujiSuzuki/vitecsp/internal/csp"
	"github.com/YujiSuzuki/vitecsp/internal/fsutil"
)

// Options configures a Patcher.
// OptionsはPatcherを設定します。
type Options struct {
	// Candidates is the ordered list of config filenames to search.
	Candidates []string

	// Lock takes an advisory lock file for mutating runs.
	Lock bool

	// DryRun computes the new text without creating a backup or writing.
	// DryRunはバックアップ作成や書き込みをせずに新しいテキストを計算します。
	DryRun bool

	// Audit receives one record per invocation. May be nil.
	Audit *audit.Logger

	// Now supplies the backup suffix clock. Defaults to time.Now.
	Now func() time.Time
}

// OptionsFromConfig builds Options from the loaded configuration.
// OptionsFromConfigは読み込まれた設定からOptionsを構築します。
func OptionsFromConfig(cfg *config.Config, auditLogger *audit.Logger) Options {
	return Options{
		Candidates: cfg.Target.Candidates,
		Lock:       cfg.Lock.Enabled,
		Audit:      auditLogger,
	}
}

// Patcher applies the fixed CSP patch and directive appends to a config file.
// PatcherはCSPの固定パッチとディレクティブ追加を設定ファイルに適用します。
type Patcher struct {
	opts Options
}

// New creates a Patcher.
func New(opts Options) *Patcher {
	if len(opts.Candidates) == 0 {
		opts.Candidates = config.DefaultCandidates
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Patcher{opts: opts}
}

// PatchResult describes the outcome of Patch.
// PatchResultはPatchの結果を表します。
type PatchResult struct {
	// Path is the located config file.
	Path string

	// BackupPath is the snapshot taken before writing. Empty for dry runs
	// and already-patched files.
	BackupPath string

	// Text is the patched content (also set for dry runs).
	Text string

	// Warnings lists the degraded, non-fatal steps.
	Warnings []Warning

	// DryRun is true when nothing was written.
	DryRun bool
}

// HasWarning reports whether w was raised.
func (r *PatchResult) HasWarning(w Warning) bool {
	for _, got := range r.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// Locate returns the first candidate that exists as a regular file in dir.
// The order of candidates is significant: the first existing name wins.
//
// Locateはdir内に通常ファイルとして存在する最初の候補を返します。
// 候補の順序は重要で、最初に存在する名前が採用されます。
func Locate(dir string, candidates []string) (string, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				slog.Debug("Skipping candidate", "path", path, "error", err)
			}
			continue
		}
		if info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNoConfigFound, dir, strings.Join(candidates, ", "))
}

// Patch inserts the policy block and server headers into the config file in dir.
// When the file is already patched it returns a result with Path set together
// with ErrAlreadyPatched, and the file is untouched.
//
// Patchはdir内の設定ファイルにポリシーブロックとサーバーヘッダーを挿入します。
// 既にパッチ済みの場合、Pathを設定した結果とErrAlreadyPatchedを返し、
// ファイルは変更しません。
func (p *Patcher) Patch(ctx context.Context, dir string) (*PatchResult, error) {
	start := time.Now()

	path, err := Locate(dir, p.opts.Candidates)
	if err != nil {
		return nil, err
	}
	slog.Debug("Located config file", "path", path)

	release, err := p.lock(path)
	if err != nil {
		return nil, err
	}
	defer release()

	original, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result := &PatchResult{Path: path, DryRun: p.opts.DryRun}

	if csp.IsAlreadyPatched(string(original)) {
		p.record(ctx, audit.Event{
			Type:    audit.EventSkipped,
			File:    path,
			Result:  audit.ResultSkipped,
			Details: map[string]any{"reason": "already_patched"},
		})
		return result, ErrAlreadyPatched
	}

	if p.opts.DryRun {
		result.Text, result.Warnings = patchText(string(original))
		return result, nil
	}

	backup, err := fsutil.Snapshot(path, p.opts.Now())
	if err != nil {
		p.recordError(ctx, audit.EventPatch, path, "", err)
		return nil, err
	}
	result.BackupPath = backup
	slog.Debug("Backup created", "path", backup)

	result.Text, result.Warnings = patchText(string(original))

	if err := fsutil.ReplaceIfUnchanged(path, fsutil.Digest(original), []byte(result.Text)); err != nil {
		p.recordError(ctx, audit.EventPatch, path, backup, err)
		return nil, err
	}

	details := map[string]any{}
	if len(result.Warnings) > 0 {
		details["warnings"] = warningStrings(result.Warnings)
	}
	p.record(ctx, audit.Event{
		Type:       audit.EventPatch,
		File:       path,
		Backup:     backup,
		Result:     audit.ResultSuccess,
		Details:    details,
		DurationMs: audit.MeasureDuration(start),
	})
	return result, nil
}

// patchText applies both insertions and collects the degraded steps.
func patchText(text string) (string, []Warning) {
	var warnings []Warning

	if csp.HasServerKey(text) {
		warnings = append(warnings, WarnServerKeyExists)
	}

	text, found := csp.InsertPolicyBlock(text)
	if !found {
		warnings = append(warnings, WarnImportBlockNotRecognized)
	}

	text, found = csp.InsertServerHeaders(text)
	if !found {
		warnings = append(warnings, WarnDefineConfigNotRecognized)
	}

	return text, warnings
}

// lock takes the advisory lock when enabled and returns its release func.
func (p *Patcher) lock(path string) (func(), error) {
	if !p.opts.Lock || p.opts.DryRun {
		return func() {}, nil
	}
	l, err := fsutil.AcquireLock(path)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := l.Release(); err != nil {
			slog.Warn("Failed to release lock", "path", l.Path(), "error", err)
		}
	}, nil
}

func (p *Patcher) record(ctx context.Context, event audit.Event) {
	p.opts.Audit.Log(ctx, event)
}

func (p *Patcher) recordError(ctx context.Context, eventType audit.EventType, path, backup string, err error) {
	p.record(ctx, audit.Event{
		Type:         eventType,
		File:         path,
		Backup:       backup,
		Result:       audit.ResultError,
		ErrorMessage: err.Error(),
	})
}

func warningStrings(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = string(w)
	}
	return out
}
