package fsutil

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// LockSuffix is appended to the config path to form the advisory lock file.
const LockSuffix = ".lock"

// ErrLocked is returned when another invocation holds the lock on the file.
// ErrLockedは別の呼び出しがファイルのロックを保持している場合に返されます。
var ErrLocked = errors.New("config file is locked by another invocation")

// Lock is an advisory lock file next to the config file. It only guards
// against other vitecsp invocations; editors and other tools ignore it.
//
// Lockは設定ファイルの隣に置かれるアドバイザリロックファイルです。
// 他のvitecsp呼び出しのみを防ぎ、エディタや他のツールは無視します。
type Lock struct {
	path string
}

// AcquireLock creates <path>.lock exclusively and records the PID in it.
// A leftover lock from a crashed run must be removed by the operator.
//
// AcquireLockは<path>.lockを排他的に作成し、PIDを記録します。
// クラッシュした実行の残存ロックはオペレーターが削除する必要があります。
func AcquireLock(path string) (*Lock, error) {
	lockPath := path + LockSuffix
	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: remove %s if no other run is active", ErrLocked, lockPath)
		}
		return nil, fmt.Errorf("create lock %s: %w", lockPath, err)
	}
	_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock %s: %w", lockPath, err)
	}
	return &Lock{path: lockPath}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the lock file. Releasing a nil lock is a no-op.
// Releaseはロックファイルを削除します。nilロックの解放は何もしません。
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
