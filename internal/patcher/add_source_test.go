package patcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YujiSuzuki/vitecsp/internal/csp"
	"github.com/YujiSuzuki/vitecsp/internal/fsutil"
)

// patchedFixture writes a scaffold config and runs the full patch on it.
func patchedFixture(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = writeConfig(t, dir, "vite.config.ts", scaffold)
	_, err := newTestPatcher(Options{}).Patch(context.Background(), dir)
	require.NoError(t, err)
	return dir, path
}

func TestAddSource(t *testing.T) {
	dir, path := patchedFixture(t)
	before := read(t, path)

	p := newTestPatcher(Options{Lock: true, Now: func() time.Time { return time.UnixMilli(1760000000500) }})
	res, err := p.AddSource(context.Background(), dir, AddSourceRequest{
		Directive: csp.ConnectSrc,
		Source:    "  https://api.example.com ",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", res.Source)
	assert.Equal(t, fsutil.BackupPath(path, 1760000000500), res.BackupPath)
	assert.Equal(t, before, read(t, res.BackupPath))

	after := read(t, path)
	tokens, err := csp.Sources(after, csp.ConnectSrc)
	require.NoError(t, err)
	assert.Equal(t, "'self'", tokens[0])
	assert.Equal(t, "https://api.example.com", tokens[len(tokens)-1])

	for _, d := range csp.Directives {
		if d == csp.ConnectSrc {
			continue
		}
		was, _ := csp.Sources(before, d)
		now, _ := csp.Sources(after, d)
		assert.Equal(t, was, now, "directive %s must not change", d)
	}
}

func TestAddSource_AppendsDuplicatesUnlessSkipping(t *testing.T) {
	dir, path := patchedFixture(t)
	p := newTestPatcher(Options{})
	req := AddSourceRequest{Directive: csp.ImgSrc, Source: "https://img.example.com"}

	_, err := p.AddSource(context.Background(), dir, req)
	require.NoError(t, err)
	_, err = p.AddSource(context.Background(), dir, req)
	require.NoError(t, err)

	tokens, err := csp.Sources(read(t, path), csp.ImgSrc)
	require.NoError(t, err)
	count := 0
	for _, tok := range tokens {
		if tok == "https://img.example.com" {
			count++
		}
	}
	assert.Equal(t, 2, count)

	before := read(t, path)
	backupsBefore := len(backups(t, dir))

	req.SkipExisting = true
	res, err := p.AddSource(context.Background(), dir, req)
	require.NoError(t, err)
	assert.True(t, res.AlreadyPresent)
	assert.Equal(t, before, read(t, path))
	assert.Len(t, backups(t, dir), backupsBefore)
}

func TestAddSource_DirectiveNotFound(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "vite.config.ts", scaffold)

	_, err := newTestPatcher(Options{}).AddSource(context.Background(), dir, AddSourceRequest{
		Directive: csp.ConnectSrc,
		Source:    "https://api.example.com",
	})
	assert.ErrorIs(t, err, csp.ErrDirectiveNotFound)
	assert.Equal(t, scaffold, read(t, path))
	assert.Empty(t, backups(t, dir), "no backup before a failed precondition")
}

func TestAddSource_InputErrors(t *testing.T) {
	dir, path := patchedFixture(t)
	before := read(t, path)
	p := newTestPatcher(Options{})

	tests := []struct {
		name    string
		req     AddSourceRequest
		wantErr error
	}{
		{"blank source", AddSourceRequest{Directive: csp.ConnectSrc, Source: "   "}, ErrEmptySource},
		{"unknown directive", AddSourceRequest{Directive: "frame-src", Source: "https://a.example.com"}, csp.ErrUnknownDirective},
		{"invalid source", AddSourceRequest{Directive: csp.ConnectSrc, Source: "https://a.example.com]"}, csp.ErrInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.AddSource(context.Background(), dir, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, read(t, path))
		})
	}
}

func TestAddSource_DryRun(t *testing.T) {
	dir, path := patchedFixture(t)
	before := read(t, path)
	backupsBefore := len(backups(t, dir))

	res, err := newTestPatcher(Options{DryRun: true}).AddSource(context.Background(), dir, AddSourceRequest{
		Directive: csp.WorkerSrc,
		Source:    "https://worker.example.com",
	})
	require.NoError(t, err)
	assert.True(t, csp.HasSource(res.Text, csp.WorkerSrc, "https://worker.example.com"))
	assert.Equal(t, before, read(t, path))
	assert.Len(t, backups(t, dir), backupsBefore)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "vite.config.mjs", scaffold)
	p := newTestPatcher(Options{})

	st, err := p.Inspect(dir)
	require.NoError(t, err)
	assert.False(t, st.Patched)
	assert.False(t, st.HasServerHeaders)
	assert.Empty(t, st.Directives)

	_, err = p.Patch(context.Background(), dir)
	require.NoError(t, err)

	st, err = p.Inspect(dir)
	require.NoError(t, err)
	assert.True(t, st.Patched)
	assert.True(t, st.HasServerHeaders)
	assert.Len(t, st.Directives, len(csp.Directives))
	assert.Equal(t, []string{"'self'", "blob:"}, st.Directives[csp.WorkerSrc])
}
