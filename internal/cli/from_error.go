// from_error.go implements 'from-error', which turns a browser console CSP
// violation message into an add-source of the blocked origin.
//
// from_error.goは'from-error'を実装します。ブラウザコンソールのCSP違反メッセージを
// ブロックされたオリジンのadd-sourceに変換します。
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YujiSuzuki/vitecsp/internal/patcher"
	"github.com/YujiSuzuki/vitecsp/internal/violation"
)

var errNoMessage = errors.New("no console message given (pass it as an argument or on stdin)")

var fromErrorCmd = &cobra.Command{
	Use:   "from-error [message]",
	Short: "Allow the origin blocked in a pasted console error",
	Long: `Parse a Content Security Policy violation message copied from the browser
console, and append the blocked origin to the violated directive.

The message is read from the argument, or from stdin when no argument is given.
Nothing is written when the directive already lists the origin.`,
	Example: `  vitecsp from-error "Refused to connect to 'https://api.example.com/v1' because it violates the following Content Security Policy directive: \"connect-src 'self'\"."
  pbpaste | vitecsp from-error`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFromError,
}

func init() {
	rootCmd.AddCommand(fromErrorCmd)
}

func runFromError(cmd *cobra.Command, args []string) error {
	message, err := readMessage(cmd, args)
	if err != nil {
		return err
	}

	v, err := violation.Parse(message)
	if err != nil {
		return fmt.Errorf("could not read the console message: %w", err)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	slog.Debug("Parsed violation", "directive", v.Directive, "blocked", v.BlockedURL, "origin", v.Origin)

	res, err := s.patcher.AddSource(cmd.Context(), s.dir, patcher.AddSourceRequest{
		Directive:    v.Directive,
		Source:       v.Origin,
		SkipExisting: true,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Blocked: %s (%s)\n", v.BlockedURL, v.Directive)
	printAddSourceResult(cmd, res)
	return nil
}

func readMessage(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		if msg := strings.TrimSpace(args[0]); msg != "" {
			return msg, nil
		}
		return "", errNoMessage
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "", errNoMessage
	}
	return msg, nil
}
