package patcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/YujiSuzuki/vitecsp/internal/audit"
	"github.com/YujiSuzuki/vitecsp/internal/csp"
	"github.com/YujiSuzuki/vitecsp/internal/fsutil"
)

// AddSourceRequest names the directive to extend and the source to append.
// AddSourceRequestは拡張するディレクティブと追加するソースを指定します。
type AddSourceRequest struct {
	Directive csp.Directive
	Source    string

	// SkipExisting checks for an identical quoted literal first and leaves the
	// file alone when one is found. The append itself never de-duplicates.
	//
	// SkipExistingは同一の引用符付きリテラルを先に確認し、見つかった場合は
	// ファイルを変更しません。追加処理自体は重複排除を行いません。
	SkipExisting bool
}

// AddSourceResult describes the outcome of AddSource.
type AddSourceResult struct {
	Path       string
	BackupPath string
	Directive  csp.Directive
	Source     string
	Text       string

	// AlreadyPresent is true when SkipExisting found the source and nothing was written.
	AlreadyPresent bool

	DryRun bool
}

// AddSource appends one source to a directive array of the config file in dir.
// A missing directive aborts before the backup is taken, so no partial write
// can happen.
//
// AddSourceはdir内の設定ファイルのディレクティブ配列にソースを1つ追加します。
// ディレクティブが存在しない場合はバックアップ前に中止するため、
// 部分的な書き込みは発生しません。
func (p *Patcher) AddSource(ctx context.Context, dir string, req AddSourceRequest) (*AddSourceResult, error) {
	start := time.Now()

	if !req.Directive.Valid() {
		return nil, fmt.Errorf("%w: %q", csp.ErrUnknownDirective, req.Directive)
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return nil, ErrEmptySource
	}
	if err := csp.ValidateSource(source); err != nil {
		return nil, err
	}

	path, err := Locate(dir, p.opts.Candidates)
	if err != nil {
		return nil, err
	}

	release, err := p.lock(path)
	if err != nil {
		return nil, err
	}
	defer release()

	original, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(original)

	result := &AddSourceResult{
		Path:      path,
		Directive: req.Directive,
		Source:    source,
		DryRun:    p.opts.DryRun,
	}

	// Precondition: the directive array must exist before anything is written.
	// 前提条件：書き込み前にディレクティブ配列が存在する必要があります。
	if _, err := csp.Sources(text, req.Directive); err != nil {
		p.recordError(ctx, audit.EventAddSource, path, "", err)
		return nil, err
	}

	if req.SkipExisting && csp.HasSource(text, req.Directive, source) {
		result.AlreadyPresent = true
		result.Text = text
		p.record(ctx, audit.Event{
			Type:    audit.EventSkipped,
			File:    path,
			Result:  audit.ResultSkipped,
			Details: map[string]any{"reason": "source_present", "directive": string(req.Directive), "source": source},
		})
		return result, nil
	}

	if p.opts.DryRun {
		result.Text, err = csp.AppendSource(text, req.Directive, source)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	backup, err := fsutil.Snapshot(path, p.opts.Now())
	if err != nil {
		p.recordError(ctx, audit.EventAddSource, path, "", err)
		return nil, err
	}
	result.BackupPath = backup
	slog.Debug("Backup created", "path", backup)

	result.Text, err = csp.AppendSource(text, req.Directive, source)
	if err != nil {
		p.recordError(ctx, audit.EventAddSource, path, backup, err)
		return nil, err
	}

	if err := fsutil.ReplaceIfUnchanged(path, fsutil.Digest(original), []byte(result.Text)); err != nil {
		p.recordError(ctx, audit.EventAddSource, path, backup, err)
		return nil, err
	}

	p.record(ctx, audit.Event{
		Type:       audit.EventAddSource,
		File:       path,
		Backup:     backup,
		Result:     audit.ResultSuccess,
		Details:    map[string]any{"directive": string(req.Directive), "source": source},
		DurationMs: audit.MeasureDuration(start),
	})
	return result, nil
}
