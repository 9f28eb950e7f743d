package patcher

import (
	"fmt"
	"os"

	"github.com/YujiSuzuki/vitecsp/internal/csp"
)

// Status is a read-only view of the located config file.
// Statusは検索された設定ファイルの読み取り専用ビューです。
type Status struct {
	Path    string
	Patched bool

	// HasServerHeaders is true when the header key is present in the file.
	HasServerHeaders bool

	// Directives holds the tokens of each directive array found, in policy order.
	// Missing directives are absent from the map.
	Directives map[csp.Directive][]string
}

// Inspect locates the config file and reports its patch state without writing.
// Inspectは設定ファイルを検索し、書き込みなしでパッチ状態を報告します。
func (p *Patcher) Inspect(dir string) (*Status, error) {
	path, err := Locate(dir, p.opts.Candidates)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(data)

	st := &Status{
		Path:             path,
		Patched:          csp.IsAlreadyPatched(text),
		HasServerHeaders: csp.HasHeaderKey(text),
		Directives:       make(map[csp.Directive][]string),
	}
	for _, d := range csp.Directives {
		if tokens, err := csp.Sources(text, d); err == nil {
			st.Directives[d] = tokens
		}
	}
	return st, nil
}
