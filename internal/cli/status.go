// status.go implements the read-only 'status' command.
// status.goは読み取り専用の'status'コマンドを実装します。
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YujiSuzuki/vitecsp/internal/csp"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which config file is used and what the policy contains",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	st, err := s.patcher.Inspect(s.dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config:         %s\n", st.Path)
	fmt.Fprintf(out, "Policy block:   %s\n", yesNo(st.Patched))
	fmt.Fprintf(out, "Server headers: %s\n", yesNo(st.HasServerHeaders))

	if len(st.Directives) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIRECTIVE\tSOURCES")
	fmt.Fprintln(w, "---------\t-------")
	for _, d := range csp.Directives {
		tokens, ok := st.Directives[d]
		if !ok {
			fmt.Fprintf(w, "%s\t(missing)\n", d)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", d, strings.Join(tokens, " "))
	}
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
