// Package csp holds the Content-Security-Policy text operations for Vite config files.
// Every operation works on raw text with regular expressions; nothing here parses
// JavaScript or TypeScript.
//
// cspパッケージはVite設定ファイル向けのContent-Security-Policyテキスト操作を保持します。
// すべての操作は正規表現で生のテキストを扱い、JavaScript/TypeScriptの構文解析は行いません。
package csp

import (
	"errors"
	"fmt"
	"strings"
)

// Directive is one named category within a CSP policy (e.g. "script-src").
// Directiveは CSP ポリシー内の名前付きカテゴリ（例: "script-src"）です。
type Directive string

const (
	DefaultSrc Directive = "default-src"
	ScriptSrc  Directive = "script-src"
	StyleSrc   Directive = "style-src"
	FontSrc    Directive = "font-src"
	ImgSrc     Directive = "img-src"
	ConnectSrc Directive = "connect-src"
	WorkerSrc  Directive = "worker-src"
)

// Keyword sources used by the generated policy.
// 生成されるポリシーで使用するキーワードソース。
const (
	SourceSelf         = "'self'"
	SourceUnsafeInline = "'unsafe-inline'"
	SourceUnsafeEval   = "'unsafe-eval'"
)

// ErrUnknownDirective is returned when a directive name is outside the fixed set.
// ErrUnknownDirectiveはディレクティブ名が固定セット外の場合に返されます。
var ErrUnknownDirective = errors.New("unknown CSP directive")

// Directives lists every directive of the generated policy in block order.
// Directivesは生成ポリシーの全ディレクティブをブロック順に列挙します。
var Directives = []Directive{
	DefaultSrc,
	ScriptSrc,
	StyleSrc,
	FontSrc,
	ImgSrc,
	ConnectSrc,
	WorkerSrc,
}

// SelectableDirectives are the choices offered when an operator adds a source.
// default-src is not offered; new origins go to a specific fetch directive.
//
// SelectableDirectivesはオペレーターがソースを追加する際に提示される選択肢です。
// default-srcは含めません。新しいオリジンは個別のフェッチディレクティブに属します。
var SelectableDirectives = []Directive{
	ScriptSrc,
	StyleSrc,
	FontSrc,
	ImgSrc,
	ConnectSrc,
	WorkerSrc,
}

// ParseDirective normalizes name and checks it against the fixed directive set.
// ParseDirectiveはnameを正規化し、固定ディレクティブセットと照合します。
func ParseDirective(name string) (Directive, error) {
	d := Directive(strings.ToLower(strings.TrimSpace(name)))
	if d.Valid() {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirective, name)
}

// Valid reports whether d is one of the fixed directives.
func (d Directive) Valid() bool {
	for _, known := range Directives {
		if d == known {
			return true
		}
	}
	return false
}

func (d Directive) String() string {
	return string(d)
}
