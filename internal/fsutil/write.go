package fsutil

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
)

// ErrConcurrentModification is returned when the file changed between the read
// a patch was computed from and the write of that patch.
//
// ErrConcurrentModificationはパッチ計算元の読み込みとパッチの書き込みの間に
// ファイルが変更された場合に返されます。
var ErrConcurrentModification = errors.New("file was modified by another writer")

// Digest returns the SHA-256 of data.
func Digest(data []byte) [sha256.Size]byte {
	return sha256.Sum256(data)
}

// ReplaceIfUnchanged re-reads path, verifies it still hashes to expected and
// then replaces its contents with data in one atomic step. This keeps the
// read-modify-write window as narrow as the filesystem allows; it is not a
// cross-process compare-and-swap.
//
// ReplaceIfUnchangedはpathを再読み込みしてexpectedのハッシュと一致することを確認し、
// その後dataでアトミックに内容を置き換えます。読み込み・変更・書き込みの間隔を
// ファイルシステムが許す限り狭くしますが、プロセス間のCASではありません。
func ReplaceIfUnchanged(path string, expected [sha256.Size]byte, data []byte) error {
	current, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("re-read %s: %w", path, err)
	}
	if Digest(current) != expected {
		return fmt.Errorf("%w: %s", ErrConcurrentModification, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return replaceFile(path, data, info.Mode().Perm())
}
