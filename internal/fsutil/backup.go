// Package fsutil provides the file operations around a config patch: backup
// snapshots, atomic replacement with a content precondition, and an advisory lock.
//
// fsutilパッケージは設定パッチ周辺のファイル操作を提供します：
// バックアップのスナップショット、内容の前提条件付きアトミック置換、アドバイザリロック。
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// BackupInfix separates the original filename from the distinguishing suffix.
// BackupInfixは元のファイル名と識別サフィックスを区切ります。
const BackupInfix = ".backup."

// ErrBackupFailed is returned when the backup copy could not be written.
// The original file is never touched after this error.
//
// ErrBackupFailedはバックアップコピーを書き込めなかった場合に返されます。
// このエラーの後、元のファイルは一切変更されません。
var ErrBackupFailed = errors.New("backup failed")

// maxSuffixBumps bounds the search for a free backup name.
const maxSuffixBumps = 1000

// Snapshot copies the current bytes of path to
// <path>.backup.<unix-millis>. The backup is created exclusively, so an
// existing backup is never overwritten; when the name is taken the suffix is
// bumped until a free name is found. A partially written backup is removed.
//
// Snapshotはpathの現在のバイトを<path>.backup.<unixミリ秒>にコピーします。
// バックアップは排他的に作成されるため既存のバックアップは上書きされません。
// 名前が使用済みの場合は空き名が見つかるまでサフィックスを増やします。
// 書き込み途中のバックアップは削除されます。
func Snapshot(path string, now time.Time) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrBackupFailed, path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", ErrBackupFailed, path, err)
	}

	dst, backupPath, err := createExclusive(path, now.UnixMilli(), info.Mode().Perm())
	if err != nil {
		return "", err
	}

	if err := copyAndSync(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return "", fmt.Errorf("%w: write %s: %w", ErrBackupFailed, backupPath, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("%w: close %s: %w", ErrBackupFailed, backupPath, err)
	}

	return backupPath, nil
}

// BackupPath returns the backup name for path with the given suffix value.
// BackupPathは指定されたサフィックス値でpathのバックアップ名を返します。
func BackupPath(path string, suffix int64) string {
	return path + BackupInfix + strconv.FormatInt(suffix, 10)
}

// createExclusive opens the first free backup name starting at suffix.
func createExclusive(path string, suffix int64, perm os.FileMode) (*os.File, string, error) {
	for i := int64(0); i < maxSuffixBumps; i++ {
		name := BackupPath(path, suffix+i)
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("%w: create %s: %w", ErrBackupFailed, name, err)
		}
	}
	return nil, "", fmt.Errorf("%w: no free backup name for %s", ErrBackupFailed, path)
}

func copyAndSync(dst *os.File, src io.Reader) error {
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Sync()
}
