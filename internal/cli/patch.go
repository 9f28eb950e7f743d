// patch.go implements the default action: inserting the policy block and the
// dev server headers into the Vite config file.
//
// patch.goはデフォルト動作を実装します：ポリシーブロックと開発サーバーのヘッダーを
// Vite設定ファイルに挿入します。
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/YujiSuzuki/vitecsp/internal/csp"
	"github.com/YujiSuzuki/vitecsp/internal/patcher"
)

func runPatch(cmd *cobra.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	out := cmd.OutOrStdout()

	res, err := s.patcher.Patch(cmd.Context(), s.dir)
	if errors.Is(err, patcher.ErrAlreadyPatched) {
		fmt.Fprintf(out, "%s already contains %s, nothing to do.\n", res.Path, csp.Marker)
		fmt.Fprintln(out, "Use --add-source, add-source or from-error to allow more sources.")
		return nil
	}
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		slog.Warn(warningMessage(w), "file", res.Path)
	}

	if res.DryRun {
		fmt.Fprint(out, res.Text)
	} else {
		fmt.Fprintf(out, "Patched %s\n", res.Path)
		fmt.Fprintf(out, "Backup:  %s\n", res.BackupPath)
	}

	if res.HasWarning(patcher.WarnDefineConfigNotRecognized) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Could not find `export default defineConfig({`.")
		fmt.Fprintln(out, "Add the following to your Vite config object manually:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, csp.ServerHeaders)
	}
	return nil
}

// warningMessage returns the operator-facing text for a degraded step.
func warningMessage(w patcher.Warning) string {
	switch w {
	case patcher.WarnImportBlockNotRecognized:
		return "No import statements recognized, policy block was placed at the top of the file"
	case patcher.WarnDefineConfigNotRecognized:
		return "defineConfig call not recognized, server headers were not inserted"
	case patcher.WarnServerKeyExists:
		return "Config already declares a server key, merge the inserted server block into it"
	default:
		return string(w)
	}
}
