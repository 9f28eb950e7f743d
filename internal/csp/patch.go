// patch.go implements the regex-based splicing of the policy into config text.
// The patterns are heuristics over raw text; they do not understand the import
// grammar and only recognize the shapes Vite's scaffolding produces.
//
// patch.goは設定テキストへのポリシー挿入を正規表現で実装します。
// パターンは生テキストに対するヒューリスティックであり、import構文全体は理解せず、
// Viteのひな形が生成する形のみを認識します。
package csp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrDirectiveNotFound is returned when the directive key and its array literal
// are absent from the text. The policy block is missing or was renamed.
//
// ErrDirectiveNotFoundはディレクティブのキーと配列リテラルがテキストに存在しない場合に返されます。
// ポリシーブロックが存在しないか、名前が変更されています。
var ErrDirectiveNotFound = errors.New("CSP directive not found in config")

// ErrInvalidSource is returned for source tokens that cannot be written as a
// single-line string literal inside a directive array.
var ErrInvalidSource = errors.New("invalid CSP source")

var (
	// importRunPattern matches a run of `import ... from '...'` and side-effect
	// `import '...'` statements. Blank lines may separate groups inside the run.
	// The import clause never crosses a quote, paren, `=` or semicolon, so it
	// cannot reach into code below the imports.
	//
	// importRunPatternは`import ... from '...'`文と副作用の`import '...'`文の連続にマッチします。
	// 空行で区切られたグループも連続の一部です。import句は引用符、括弧、`=`、セミコロンを
	// 越えないため、import文より下のコードには届きません。
	importRunPattern = regexp.MustCompile(`(?m)^(?:import(?:\s[^;'"()=]*?\sfrom\s*|\s*)['"][^'"\n]+['"][ \t]*;?[ \t]*(?:\r?\n|\z)(?:[ \t]*\r?\n)*)+`)

	// defineConfigPattern matches the opening of `export default <factory>({`.
	// defineConfigPatternは`export default <factory>({`の開始部分にマッチします。
	defineConfigPattern = regexp.MustCompile(`export\s+default\s+[\w$.]+\s*\(\s*\{`)

	serverKeyPattern = regexp.MustCompile(`(?m)^\s*server\s*:`)

	headerKeyPattern = regexp.MustCompile(`['"]` + regexp.QuoteMeta(HeaderName) + `['"]\s*:`)

	literalPattern = regexp.MustCompile(`'([^'\n]*)'|"([^"\n]*)"`)
)

// IsAlreadyPatched reports whether the marker occurs anywhere in text.
// A marker inside a comment or string also counts.
//
// IsAlreadyPatchedはテキスト内にマーカーが存在するかを返します。
// コメントや文字列内のマーカーも対象になります。
func IsAlreadyPatched(text string) bool {
	return strings.Contains(text, Marker)
}

// InsertPolicyBlock inserts the policy block directly after the first run of
// import statements. When no run is recognized the block is prepended to the
// whole text and found is false. The inserted text follows the file's line
// endings.
//
// InsertPolicyBlockは最初のimport文の連続の直後にポリシーブロックを挿入します。
// 認識できない場合はテキスト全体の先頭に追加し、foundはfalseになります。
func InsertPolicyBlock(text string) (patched string, found bool) {
	eol := lineEnding(text)
	block := withLineEnding(PolicyBlock(), eol)

	loc := importRunPattern.FindStringIndex(text)
	if loc == nil {
		return block + eol + text, false
	}

	// Blank lines after the last import stay below the block.
	// 最後のimport文の後の空行はブロックの下に残します。
	end := loc[0] + len(strings.TrimRight(text[loc[0]:loc[1]], " \t\r\n"))
	if i := strings.IndexByte(text[end:loc[1]], '\n'); i >= 0 {
		end += i + 1
	}

	head, tail := text[:end], text[end:]
	if !strings.HasSuffix(head, "\n") {
		head += eol
	}
	return head + eol + block + eol + tail, true
}

// InsertServerHeaders splices the server headers literal right after the
// opening brace of the first `export default <factory>({` call. When the call
// is not found the text is returned unchanged and found is false; the caller
// shows ServerHeaders to the operator instead.
//
// InsertServerHeadersは最初の`export default <factory>({`呼び出しの開き括弧の直後に
// サーバーヘッダーリテラルを挿入します。見つからない場合はテキストを変更せず
// foundはfalseになります。呼び出し側はServerHeadersをオペレーターに表示します。
func InsertServerHeaders(text string) (patched string, found bool) {
	loc := defineConfigPattern.FindStringIndex(text)
	if loc == nil {
		return text, false
	}

	eol := lineEnding(text)
	head, tail := text[:loc[1]], text[loc[1]:]
	insert := eol + withLineEnding(ServerHeaders, eol)
	if !strings.HasPrefix(tail, "\n") && !strings.HasPrefix(tail, "\r\n") {
		insert += eol
	}
	return head + insert + tail, true
}

// lineEnding returns "\r\n" when text uses CRLF line endings, "\n" otherwise.
// lineEndingはtextがCRLF改行を使っている場合は"\r\n"、それ以外は"\n"を返します。
func lineEnding(text string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

func withLineEnding(s, eol string) string {
	if eol == "\n" {
		return s
	}
	return strings.ReplaceAll(s, "\n", eol)
}

// HasServerKey reports whether the config object following the first
// defineConfig call already declares a `server:` key on its own line.
func HasServerKey(text string) bool {
	loc := defineConfigPattern.FindStringIndex(text)
	if loc == nil {
		return false
	}
	return serverKeyPattern.MatchString(text[loc[1]:])
}

// HasHeaderKey reports whether a Content-Security-Policy header key is present.
func HasHeaderKey(text string) bool {
	return headerKeyPattern.MatchString(text)
}

// ValidateSource checks that source can be written as a single quoted token.
// ValidateSourceはsourceが単一の引用符付きトークンとして書き込めるかを検証します。
func ValidateSource(source string) error {
	if source == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSource)
	}
	if strings.ContainsAny(source, " \t\r\n\"[],;`") {
		return fmt.Errorf("%w: %q contains a forbidden character", ErrInvalidSource, source)
	}
	if strings.Contains(source, "'") {
		// Only keyword sources such as 'self' may carry quotes.
		// 'self'のようなキーワードソースのみ引用符を含めることができます。
		inner := strings.TrimSuffix(strings.TrimPrefix(source, "'"), "'")
		if len(source) < 3 || !strings.HasPrefix(source, "'") || !strings.HasSuffix(source, "'") || strings.Contains(inner, "'") {
			return fmt.Errorf("%w: %q has unbalanced quotes", ErrInvalidSource, source)
		}
	}
	return nil
}

// AppendSource appends source, quoted, to the array literal of directive.
// Existing content is kept byte-for-byte and no de-duplication is done, so
// calling it twice with the same source inserts the source twice. When the
// directive is absent the input is returned unchanged with ErrDirectiveNotFound.
//
// AppendSourceはdirectiveの配列リテラルにsourceを引用符付きで追加します。
// 既存の内容はバイト単位でそのまま保持され、重複排除は行いません。
// ディレクティブが存在しない場合は入力をそのまま返し、ErrDirectiveNotFoundを返します。
func AppendSource(text string, directive Directive, source string) (string, error) {
	m := arrayPattern(directive).FindStringSubmatchIndex(text)
	if m == nil {
		return text, fmt.Errorf("%w: %s", ErrDirectiveNotFound, directive)
	}

	existing := text[m[4]:m[5]]
	body := strings.TrimRight(existing, " \t\r\n")
	trailing := existing[len(body):]

	sep := ", "
	switch {
	case strings.TrimSpace(body) == "":
		sep = ""
	case strings.HasSuffix(body, ","):
		sep = " "
	}

	return text[:m[5]-len(trailing)] + sep + quoteSource(source) + text[m[5]-len(trailing):], nil
}

// Sources returns the unquoted tokens of directive's array in order.
// Sourcesはdirectiveの配列のトークンを引用符を外して順番に返します。
func Sources(text string, directive Directive) ([]string, error) {
	m := arrayPattern(directive).FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrDirectiveNotFound, directive)
	}

	var tokens []string
	for _, lit := range literalPattern.FindAllStringSubmatch(m[2], -1) {
		if lit[1] != "" || strings.HasPrefix(lit[0], "'") {
			tokens = append(tokens, lit[1])
		} else {
			tokens = append(tokens, lit[2])
		}
	}
	return tokens, nil
}

// HasSource reports whether directive's array already holds source as an
// identical literal.
func HasSource(text string, directive Directive, source string) bool {
	tokens, err := Sources(text, directive)
	if err != nil {
		return false
	}
	for _, t := range tokens {
		if t == source {
			return true
		}
	}
	return false
}

// arrayPattern captures the key, the array content up to the next `]`, and the
// closing bracket. Either quote style is accepted around the key.
func arrayPattern(directive Directive) *regexp.Regexp {
	return regexp.MustCompile(`(?s)(['"]` + regexp.QuoteMeta(string(directive)) + `['"]\s*:\s*\[)(.*?)(\])`)
}
