// add_source.go implements 'add-source' and the root --add-source flag.
// Missing arguments are collected interactively.
//
// add_source.goは'add-source'とルートの--add-sourceフラグを実装します。
// 不足している引数は対話式に収集します。
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YujiSuzuki/vitecsp/internal/csp"
	"github.com/YujiSuzuki/vitecsp/internal/patcher"
	"github.com/YujiSuzuki/vitecsp/internal/prompt"
)

var addSourceCmd = &cobra.Command{
	Use:   "add-source [directive] [source]",
	Short: "Append a source to a directive of the inserted policy",
	Long: `Append a source such as https://api.example.com to one directive array
of the policy block. The config must already be patched.

When the directive or the source is omitted they are asked for interactively.
The source is appended even if the directive already lists it.`,
	Example: `  vitecsp add-source connect-src https://api.example.com
  vitecsp add-source img-src
  vitecsp add-source`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAddSource,
}

func init() {
	rootCmd.AddCommand(addSourceCmd)
}

func runAddSource(cmd *cobra.Command, args []string) error {
	p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())

	var directive csp.Directive
	if len(args) > 0 {
		d, err := csp.ParseDirective(args[0])
		if err != nil {
			return err
		}
		directive = d
	} else {
		d, err := p.SelectDirective(csp.SelectableDirectives)
		if err != nil {
			return err
		}
		directive = d
	}

	var source string
	if len(args) > 1 {
		source = args[1]
	} else {
		s, err := p.AskSource(directive)
		if err != nil {
			return err
		}
		source = s
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.patcher.AddSource(cmd.Context(), s.dir, patcher.AddSourceRequest{
		Directive: directive,
		Source:    source,
	})
	if err != nil {
		return err
	}
	printAddSourceResult(cmd, res)
	return nil
}

// printAddSourceResult reports an append, a skipped duplicate, or a dry run.
// printAddSourceResultは追加、重複によるスキップ、またはドライランの結果を表示します。
func printAddSourceResult(cmd *cobra.Command, res *patcher.AddSourceResult) {
	out := cmd.OutOrStdout()
	switch {
	case res.AlreadyPresent:
		fmt.Fprintf(out, "%s already allows %s, nothing to do.\n", res.Directive, res.Source)
	case res.DryRun:
		fmt.Fprint(out, res.Text)
	default:
		fmt.Fprintf(out, "Added %s to %s in %s\n", res.Source, res.Directive, res.Path)
		fmt.Fprintf(out, "Backup:  %s\n", res.BackupPath)
	}
}
