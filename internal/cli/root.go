// Package cli implements the command-line interface for vitecsp.
// Without a subcommand it inserts a Content Security Policy into the Vite
// config file of the working directory; subcommands extend the policy.
//
// cliパッケージはvitecspのコマンドラインインターフェースを実装します。
// サブコマンドなしでは作業ディレクトリのVite設定ファイルにContent Security Policyを挿入し、
// サブコマンドでポリシーを拡張します。
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// cfgFile holds the path to the configuration file.
	// If empty, vitecsp.yaml is searched in the default locations.
	//
	// cfgFileは設定ファイルへのパスを保持します。
	// 空の場合、vitecsp.yamlがデフォルトの場所から検索されます。
	cfgFile string

	// flagDir is the directory searched for the Vite config file.
	// flagDirはVite設定ファイルを検索するディレクトリです。
	flagDir string

	// flagLogLevel overrides logging.level from the config file.
	// flagLogLevelは設定ファイルのlogging.levelを上書きします。
	flagLogLevel string

	// flagLogFile additionally writes plain-text logs to this path.
	// flagLogFileはプレーンテキストのログをこのパスにも書き込みます。
	flagLogFile string

	// flagVerbose forces debug logging.
	flagVerbose bool

	// flagDryRun prints the resulting config instead of writing it.
	// No backup is created in this mode.
	//
	// flagDryRunは書き込む代わりに結果の設定を出力します。
	// このモードではバックアップを作成しません。
	flagDryRun bool

	// flagAddSource switches the root command to the interactive source prompt.
	// flagAddSourceはルートコマンドを対話式のソース追加に切り替えます。
	flagAddSource bool

	// rootCmd is the base command for the vitecsp CLI.
	// rootCmdはvitecsp CLIの基本コマンドです。
	rootCmd = &cobra.Command{
		Use:   "vitecsp",
		Short: "Add a Content Security Policy to a Vite dev server config",
		Long: `vitecsp patches vite.config.ts (or .js/.mjs) in the current directory so that
the Vite dev server sends a Content-Security-Policy header.

Run without arguments to insert the policy. Use --add-source or the
add-source and from-error commands to allow more sources later.
A timestamped backup is written next to the config before every change.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
)

// Execute runs the root command and all its subcommands.
// If an error occurs, it prints the error to stderr and exits with code 1.
//
// Executeはルートコマンドとそのすべてのサブコマンドを実行します。
// エラーが発生した場合、stderrにエラーを出力し、終了コード1で終了します。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// PersistentFlags are inherited by all subcommands.
	// PersistentFlagsはすべてのサブコマンドに継承されます。
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./vitecsp.yaml)")
	pf.StringVarP(&flagDir, "dir", "C", ".", "Directory containing the Vite config")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&flagLogFile, "log-file", "", "Also write plain-text logs to this file")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&flagDryRun, "dry-run", false, "Print the result instead of writing the file")

	rootCmd.Flags().BoolVar(&flagAddSource, "add-source", false, "Interactively add a source to a directive")
}

func runRoot(cmd *cobra.Command, args []string) error {
	if flagAddSource {
		return runAddSource(cmd, nil)
	}
	return runPatch(cmd)
}
