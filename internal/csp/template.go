// template.go defines the fixed text inserted into a Vite config file.
//
// template.goはVite設定ファイルに挿入される固定テキストを定義します。
package csp

import (
	"fmt"
	"strings"
)

// Marker is the declared name of the policy object inside the generated block.
// Its presence anywhere in a file means the file is treated as already patched.
//
// Markerは生成ブロック内で宣言されるポリシーオブジェクトの名前です。
// ファイル内のどこかに存在すれば、そのファイルはパッチ済みとして扱われます。
const Marker = "cspDirectives"

// HeaderName is the HTTP response header set by the Vite dev server.
const HeaderName = "Content-Security-Policy"

// Policy is an ordered set of directives with their source tokens.
// Policyはディレクティブとそのソーストークンの順序付き集合です。
type Policy struct {
	Entries []PolicyEntry
}

// PolicyEntry pairs a directive with its sources in insertion order.
// PolicyEntryはディレクティブと挿入順のソースを対にします。
type PolicyEntry struct {
	Directive Directive
	Sources   []string
}

// DefaultPolicy returns the policy written into the config file.
// The localhost entries keep Vite's dev server and HMR websocket working.
//
// DefaultPolicyは設定ファイルに書き込まれるポリシーを返します。
// localhostのエントリはViteの開発サーバーとHMRのWebSocketを動作させるためのものです。
func DefaultPolicy() Policy {
	return Policy{Entries: []PolicyEntry{
		{DefaultSrc, []string{SourceSelf}},
		{ScriptSrc, []string{SourceSelf, SourceUnsafeInline, SourceUnsafeEval, "http://localhost:*"}},
		{StyleSrc, []string{SourceSelf, SourceUnsafeInline, "https://fonts.googleapis.com"}},
		{FontSrc, []string{SourceSelf, "data:", "https://fonts.gstatic.com"}},
		{ImgSrc, []string{SourceSelf, "data:", "blob:", "https:"}},
		{ConnectSrc, []string{SourceSelf, "http://localhost:*", "ws://localhost:*"}},
		{WorkerSrc, []string{SourceSelf, "blob:"}},
	}}
}

// Header renders the policy in wire format, the same string the generated
// cspHeader helper builds at runtime.
//
// Headerはポリシーをワイヤーフォーマットで出力します。
// 生成されたcspHeaderヘルパーが実行時に構築する文字列と同じです。
func (p Policy) Header() string {
	parts := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		parts = append(parts, string(e.Directive)+" "+strings.Join(e.Sources, " "))
	}
	return strings.Join(parts, "; ")
}

// PolicyBlock returns the TypeScript block that declares the directives and the
// helper serializing them into the header value.
//
// PolicyBlockはディレクティブを宣言し、それをヘッダー値にシリアライズする
// ヘルパーを含むTypeScriptブロックを返します。
func PolicyBlock() string {
	return DefaultPolicy().block()
}

func (p Policy) block() string {
	var b strings.Builder
	b.WriteString("// Content Security Policy\n")
	fmt.Fprintf(&b, "const %s = {\n", Marker)
	for _, e := range p.Entries {
		quoted := make([]string, 0, len(e.Sources))
		for _, s := range e.Sources {
			quoted = append(quoted, quoteSource(s))
		}
		fmt.Fprintf(&b, "  '%s': [%s],\n", e.Directive, strings.Join(quoted, ", "))
	}
	b.WriteString("};\n\n")
	b.WriteString("const cspHeader = Object.entries(" + Marker + ")\n")
	b.WriteString("  .map(([directive, sources]) => `${directive} ${sources.join(' ')}`)\n")
	b.WriteString("  .join('; ');\n")
	return b.String()
}

// ServerHeaders is the object literal spliced into the defineConfig call.
// It is also printed verbatim as manual instructions when the call cannot be found.
//
// ServerHeadersはdefineConfig呼び出しに挿入されるオブジェクトリテラルです。
// 呼び出しが見つからない場合は手動手順としてそのまま表示されます。
const ServerHeaders = `  server: {
    headers: {
      '` + HeaderName + `': cspHeader,
    },
  },`

// quoteSource renders a source token as a JS string literal. Keyword sources
// already carry single quotes, so they are wrapped in double quotes.
func quoteSource(s string) string {
	if strings.Contains(s, "'") {
		return `"` + s + `"`
	}
	return "'" + s + "'"
}
