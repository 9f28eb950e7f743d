// template.go implements 'template', which prints the snippets vitecsp inserts
// so they can be applied by hand.
//
// template.goは'template'を実装します。vitecspが挿入するスニペットを表示し、
// 手動で適用できるようにします。
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YujiSuzuki/vitecsp/internal/csp"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the policy block and server headers without touching any file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "// Place after the import statements:")
		fmt.Fprintln(out)
		fmt.Fprint(out, csp.PolicyBlock())
		fmt.Fprintln(out)
		fmt.Fprintln(out, "// Place inside the defineConfig({ ... }) object:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, csp.ServerHeaders)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "// Resulting header:\n// %s: %s\n", csp.HeaderName, csp.DefaultPolicy().Header())
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
}
