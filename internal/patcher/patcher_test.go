package patcher

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YujiSuzuki/vitecsp/internal/audit"
	"github.com/YujiSuzuki/vitecsp/internal/config"
	"github.com/YujiSuzuki/vitecsp/internal/csp"
	"github.com/YujiSuzuki/vitecsp/internal/fsutil"
)

const scaffold = "import { defineConfig } from 'vite';\nexport default defineConfig({\n  plugins: [],\n});\n"

var fixedNow = func() time.Time { return time.UnixMilli(1760000000000) }

func newTestPatcher(opts Options) *Patcher {
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	return New(opts)
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func backups(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*"+fsutil.BackupInfix+"*"))
	require.NoError(t, err)
	return matches
}

func TestLocate_FirstCandidateWins(t *testing.T) {
	names := config.DefaultCandidates

	// Every non-empty subset of candidates: the first listed existing name wins.
	// 候補の空でないすべての部分集合で、最初に列挙された存在する名前が採用されます。
	for mask := 1; mask < 1<<len(names); mask++ {
		dir := t.TempDir()
		want := ""
		for i, name := range names {
			if mask&(1<<i) == 0 {
				continue
			}
			writeConfig(t, dir, name, "x")
			if want == "" {
				want = filepath.Join(dir, name)
			}
		}

		got, err := Locate(dir, names)
		require.NoError(t, err)
		assert.Equal(t, want, got, "mask %03b", mask)
	}
}

func TestLocate_NotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vite.config.ts"), 0o755))

	_, err := Locate(dir, config.DefaultCandidates)
	assert.ErrorIs(t, err, ErrNoConfigFound)
}

func TestPatch_ScaffoldScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "vite.config.ts", scaffold)

	res, err := newTestPatcher(Options{Lock: true}).Patch(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, path, res.Path)
	assert.Equal(t, fsutil.BackupPath(path, 1760000000000), res.BackupPath)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, scaffold, read(t, res.BackupPath))

	want := "import { defineConfig } from 'vite';\n\n" +
		csp.PolicyBlock() +
		"\nexport default defineConfig({\n" +
		csp.ServerHeaders +
		"\n  plugins: [],\n});\n"
	if diff := cmp.Diff(want, read(t, path)); diff != "" {
		t.Errorf("patched file mismatch (-want +got):\n%s", diff)
	}

	_, err = os.Stat(path + fsutil.LockSuffix)
	assert.True(t, os.IsNotExist(err), "lock must be released")
}

func TestPatch_TwiceIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "vite.config.js", scaffold)
	p := newTestPatcher(Options{})

	_, err := p.Patch(context.Background(), dir)
	require.NoError(t, err)
	afterFirst := read(t, path)
	require.Len(t, backups(t, dir), 1)

	res, err := p.Patch(context.Background(), dir)
	assert.ErrorIs(t, err, ErrAlreadyPatched)
	require.NotNil(t, res)
	assert.Equal(t, path, res.Path)
	assert.Empty(t, res.BackupPath)

	assert.Equal(t, afterFirst, read(t, path))
	assert.Len(t, backups(t, dir), 1, "second run must not create a backup")
}

func TestPatch_MinimalConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "vite.config.ts", "export default defineConfig({\n});\n")

	res, err := newTestPatcher(Options{}).Patch(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, res.HasWarning(WarnImportBlockNotRecognized))
	assert.False(t, res.HasWarning(WarnDefineConfigNotRecognized))

	out := read(t, path)
	assert.Equal(t, 1, strings.Count(out, "const "+csp.Marker))
	assert.Equal(t, 1, strings.Count(out, "headers:"))
}

func TestPatch_DefineConfigNotRecognized(t *testing.T) {
	dir := t.TempDir()
	in := "import { defineConfig } from 'vite';\nconst config = defineConfig({});\nexport default config;\n"
	path := writeConfig(t, dir, "vite.config.ts", in)

	res, err := newTestPatcher(Options{}).Patch(context.Background(), dir)
	require.NoError(t, err, "degraded step must not fail the run")
	assert.True(t, res.HasWarning(WarnDefineConfigNotRecognized))

	// The policy block still lands; the headers do not.
	// ポリシーブロックは挿入されますが、ヘッダーは挿入されません。
	out := read(t, path)
	assert.True(t, csp.IsAlreadyPatched(out))
	assert.False(t, csp.HasHeaderKey(out))
}

func TestPatch_WarnsOnExistingServerKey(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "vite.config.ts", "import { defineConfig } from 'vite';\nexport default defineConfig({\n  server: { port: 3000 },\n});\n")

	res, err := newTestPatcher(Options{}).Patch(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, res.HasWarning(WarnServerKeyExists))
}

func TestPatch_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "vite.config.ts", scaffold)

	res, err := newTestPatcher(Options{DryRun: true, Lock: true}).Patch(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.True(t, csp.IsAlreadyPatched(res.Text))
	assert.Equal(t, scaffold, read(t, path))
	assert.Empty(t, backups(t, dir))
}

func TestPatch_NoConfig(t *testing.T) {
	_, err := newTestPatcher(Options{}).Patch(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoConfigFound)
}

func TestPatch_LockHeld(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "vite.config.ts", scaffold)
	lock, err := fsutil.AcquireLock(path)
	require.NoError(t, err)
	defer lock.Release()

	_, err = newTestPatcher(Options{Lock: true}).Patch(context.Background(), dir)
	assert.ErrorIs(t, err, fsutil.ErrLocked)
	assert.Equal(t, scaffold, read(t, path))
	assert.Empty(t, backups(t, dir))
}

func TestPatch_BackupFailureAbortsBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "vite.config.ts", scaffold)

	// Occupy every backup name Snapshot may try.
	// Snapshotが試す可能性のあるすべてのバックアップ名を占有します。
	for i := int64(0); i < 1000; i++ {
		require.NoError(t, os.Mkdir(fsutil.BackupPath(path, 1760000000000+i), 0o755))
	}

	_, err := newTestPatcher(Options{}).Patch(context.Background(), dir)
	assert.ErrorIs(t, err, fsutil.ErrBackupFailed)
	assert.Equal(t, scaffold, read(t, path))
}

func TestPatch_AuditRecords(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "vite.config.ts", scaffold)

	var buf bytes.Buffer
	logger, err := audit.New(config.AuditConfig{
		Enabled: true,
		Events:  config.AuditEvents{Patch: true, Skipped: true},
	}, &buf)
	require.NoError(t, err)

	p := newTestPatcher(Options{Audit: logger})
	_, err = p.Patch(context.Background(), dir)
	require.NoError(t, err)
	_, err = p.Patch(context.Background(), dir)
	require.ErrorIs(t, err, ErrAlreadyPatched)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "patch", first["event_type"])
	assert.Equal(t, path, first["file"])
	assert.Equal(t, fsutil.BackupPath(path, 1760000000000), first["backup"])
	assert.Equal(t, "skipped", second["event_type"])
}
