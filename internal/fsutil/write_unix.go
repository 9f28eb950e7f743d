//go:build !windows

package fsutil

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/renameio/v2"
)

// replaceFile writes data with full durability guarantees using renameio.
// fsync before rename means a crash leaves either the old or the new file.
//
// replaceFileはrenameioを使用して完全な永続性保証付きでdataを書き込みます。
// リネーム前のfsyncにより、クラッシュ時は旧ファイルか新ファイルのどちらかが残ります。
func replaceFile(path string, data []byte, perm os.FileMode) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", path, err)
	}
	defer func() {
		// No-op once committed.
		// コミット済みの場合は何もしません。
		if err := pendingFile.Cleanup(); err != nil {
			slog.Debug("Cleanup pending file", "path", path, "error", err)
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write pending file for %s: %w", path, err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}
