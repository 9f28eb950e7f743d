// Package prompt collects a directive choice and a source URL from an operator
// over a line-oriented terminal exchange.
//
// promptパッケージは行指向の端末対話でオペレーターから
// ディレクティブの選択とソースURLを収集します。
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/YujiSuzuki/vitecsp/internal/csp"
)

// ErrCancelled is returned when the operator quits or input ends before an answer.
// ErrCancelledはオペレーターが終了した場合、または回答前に入力が終わった場合に返されます。
var ErrCancelled = errors.New("cancelled by operator")

// Prompter reads answers line by line from in and writes questions to out.
// Prompterはinから1行ずつ回答を読み取り、outに質問を書き込みます。
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// New creates a Prompter. Tests pass strings.Reader and strings.Builder.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// SelectDirective shows a numbered list of choices and returns the one picked.
// Either the number or the directive name is accepted; "q" cancels.
// Invalid answers re-prompt.
//
// SelectDirectiveは番号付きの選択肢を表示し、選ばれたものを返します。
// 番号またはディレクティブ名のどちらも受け付け、"q"でキャンセルします。
// 無効な回答の場合は再度質問します。
func (p *Prompter) SelectDirective(choices []csp.Directive) (csp.Directive, error) {
	fmt.Fprintln(p.out, "Select the directive to extend:")
	for i, d := range choices {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, d)
	}
	fmt.Fprintf(p.out, "Choice [1-%d, q to cancel]: ", len(choices))

	for {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if isQuit(line) {
			return "", ErrCancelled
		}
		if d, ok := pick(line, choices); ok {
			return d, nil
		}
		fmt.Fprintf(p.out, "Invalid choice %q, enter 1-%d or q: ", line, len(choices))
	}
}

// AskSource asks for the source to allow. A blank answer is returned as-is so
// the caller can reject it; "q" cancels.
//
// AskSourceは許可するソースを尋ねます。空の回答はそのまま返し、
// 呼び出し側で拒否できるようにします。"q"でキャンセルします。
func (p *Prompter) AskSource(directive csp.Directive) (string, error) {
	fmt.Fprintf(p.out, "URL to allow for %s (e.g. https://api.example.com): ", directive)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if isQuit(line) {
		return "", ErrCancelled
	}
	return line, nil
}

func (p *Prompter) readLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		// EOF before an answer counts as cancel.
		// 回答前のEOFはキャンセルとして扱います。
		return "", ErrCancelled
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func pick(answer string, choices []csp.Directive) (csp.Directive, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], true
		}
		return "", false
	}
	for _, d := range choices {
		if strings.EqualFold(answer, string(d)) {
			return d, true
		}
	}
	return "", false
}

func isQuit(answer string) bool {
	a := strings.ToLower(answer)
	return a == "q" || a == "quit"
}
