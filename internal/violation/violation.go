// Package violation extracts the directive and blocked origin from a CSP error
// message pasted from a browser console.
//
// violationパッケージはブラウザコンソールから貼り付けられたCSPエラーメッセージから
// ディレクティブとブロックされたオリジンを抽出します。
package violation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/YujiSuzuki/vitecsp/internal/csp"
)

var (
	// ErrNoDirective is returned when no directive name can be found in the message.
	// ErrNoDirectiveはメッセージ内にディレクティブ名が見つからない場合に返されます。
	ErrNoDirective = errors.New("no CSP directive found in message")

	// ErrNoURL is returned when the message names no blocked http(s) or ws(s) URL.
	// ErrNoURLはメッセージにブロックされたhttp(s)またはws(s)のURLがない場合に返されます。
	ErrNoURL = errors.New("no blocked URL found in message")
)

var (
	// Chrome: ...violates the following Content Security Policy directive: "connect-src 'self'".
	// Firefox: ...because it violates the following directive: “script-src 'self'”
	violatedDirectivePattern = regexp.MustCompile(`(?i)directive:?\s*["“']?\s*([a-z]+-src(?:-elem|-attr)?)\b`)

	// Firefox (older): ...blocked the loading of a resource at https://x/ ("script-src").
	parenDirectivePattern = regexp.MustCompile(`(?i)\(\s*["“]?([a-z]+-src(?:-elem|-attr)?)["”]?\s*\)`)

	anyDirectivePattern = regexp.MustCompile(`(?i)\b([a-z]+-src(?:-elem|-attr)?)\b`)

	blockedURLPattern = regexp.MustCompile(`(?i)\b(?:https?|wss?)://[^\s'"“”‘’<>()]+`)
)

// Violation is the information extracted from one console message.
// Violationは1つのコンソールメッセージから抽出された情報です。
type Violation struct {
	// Directive is the violated directive, normalized to the fixed set
	// (script-src-elem becomes script-src).
	Directive csp.Directive

	// BlockedURL is the full URL as it appeared in the message.
	BlockedURL string

	// Origin is scheme://host[:port] of BlockedURL.
	Origin string
}

// Parse extracts the directive and the blocked URL with two independent
// regular-expression captures, then reduces the URL to its origin.
//
// Parseは2つの独立した正規表現キャプチャでディレクティブとブロックされたURLを抽出し、
// URLをオリジンに縮約します。
func Parse(message string) (Violation, error) {
	name := findDirective(message)
	if name == "" {
		return Violation{}, ErrNoDirective
	}
	directive, err := csp.ParseDirective(baseDirective(name))
	if err != nil {
		return Violation{}, err
	}

	blocked := strings.TrimRight(blockedURLPattern.FindString(message), ".,;:")
	if blocked == "" {
		return Violation{}, ErrNoURL
	}
	origin, err := Origin(blocked)
	if err != nil {
		return Violation{}, err
	}

	return Violation{
		Directive:  directive,
		BlockedURL: blocked,
		Origin:     origin,
	}, nil
}

// Origin returns scheme://host[:port] of rawURL, discarding path, query and fragment.
// Originはパス、クエリ、フラグメントを除いたrawURLのscheme://host[:port]を返します。
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q has no scheme or host", rawURL)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

func findDirective(message string) string {
	for _, re := range []*regexp.Regexp{violatedDirectivePattern, parenDirectivePattern, anyDirectivePattern} {
		if m := re.FindStringSubmatch(message); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return ""
}

// baseDirective maps the -elem/-attr variants onto the directive the generated
// policy declares.
func baseDirective(name string) string {
	name = strings.TrimSuffix(name, "-elem")
	return strings.TrimSuffix(name, "-attr")
}
