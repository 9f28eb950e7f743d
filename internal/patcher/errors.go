package patcher

import "errors"

var (
	// ErrNoConfigFound is returned when none of the candidate files exist.
	// ErrNoConfigFoundは候補ファイルがどれも存在しない場合に返されます。
	ErrNoConfigFound = errors.New("no Vite config file found")

	// ErrAlreadyPatched is returned when the file already carries the policy marker.
	// It is an idempotence short-circuit, not a failure.
	//
	// ErrAlreadyPatchedはファイルに既にポリシーマーカーがある場合に返されます。
	// 冪等性のための早期終了であり、失敗ではありません。
	ErrAlreadyPatched = errors.New("config file is already patched")

	// ErrEmptySource is returned when the operator supplied a blank source.
	// ErrEmptySourceはオペレーターが空のソースを入力した場合に返されます。
	ErrEmptySource = errors.New("source must not be empty")
)

// Warning is a non-fatal condition that reduced what the patch could do.
// The operator has to finish the remaining part by hand.
//
// Warningはパッチの実施範囲を狭めた致命的でない状態です。
// 残りの部分はオペレーターが手動で完了する必要があります。
type Warning string

const (
	// WarnImportBlockNotRecognized means the policy block was prepended to the file.
	WarnImportBlockNotRecognized Warning = "import block not recognized; policy block was prepended to the file"

	// WarnDefineConfigNotRecognized means the server headers were not inserted.
	WarnDefineConfigNotRecognized Warning = "`export default defineConfig({` not found; server headers must be added manually"

	// WarnServerKeyExists means the config already had a server key that may shadow the inserted one.
	WarnServerKeyExists Warning = "config already declares a `server` key; merge the inserted headers into it"
)
