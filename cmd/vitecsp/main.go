// Package main is the entry point for the vitecsp application.
// vitecspアプリケーションのエントリーポイントとなるパッケージです。
//
// vitecsp inserts a Content Security Policy into a Vite dev server config.
// vitecspはVite開発サーバーの設定にContent Security Policyを挿入します。
package main

import (
	"github.com/YujiSuzuki/vitecsp/internal/cli"
)

// BuildTime is set during build using ldflags.
// Example: go build -ldflags "-X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// BuildTimeはビルド時にldflagsを使用して設定されます。
// 例: go build -ldflags "-X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var BuildTime string = "development"

// main hands the build time to the cli package and runs it.
// mainはビルド時刻をcliパッケージに渡して実行します。
func main() {
	cli.BuildTime = BuildTime
	cli.Execute()
}
