// version.go implements the 'version' command for displaying the vitecsp version.
// The version is typically set at build time using ldflags.
//
// version.goはvitecspのバージョンを表示する'version'コマンドを実装します。
// バージョンは通常、ldflagsを使用してビルド時に設定されます。
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version holds the application version string.
// This is set at build time using ldflags:
// go build -ldflags "-X github.com/YujiSuzuki/vitecsp/internal/cli.Version=1.0.0"
// The default value "dev" indicates a development build.
//
// Versionはアプリケーションのバージョン文字列を保持します。
// これはldflagsを使用してビルド時に設定されます。
// デフォルト値"dev"は開発ビルドを示します。
var Version = "dev"

// BuildTime is copied from main before Execute.
// BuildTimeはExecuteの前にmainからコピーされます。
var BuildTime = "development"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of vitecsp",
	Long:  `Print the version number of vitecsp. This version is set at build time.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vitecsp %s (built %s)\n", Version, BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
