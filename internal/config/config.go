// Package config provides configuration management for vitecsp.
// It handles loading, parsing, and validating configuration from YAML files.
//
// configパッケージはvitecspの設定管理を提供します。
// YAMLファイルからの設定の読み込み、解析、検証を処理します。
//
// Configuration is loaded from the following locations (in order of precedence):
// 設定は以下の場所から読み込まれます（優先順位順）：
//  1. Explicitly specified config file path (明示的に指定された設定ファイルパス)
//  2. ./vitecsp.yaml or ./vitecsp.yml (カレントディレクトリ)
//  3. ./configs/vitecsp.yaml (configsディレクトリ)
//  4. ~/.vitecsp/vitecsp.yaml (ホームディレクトリ)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
// Configはアプリケーション全体の設定を表します。
type Config struct {
	// Target controls which Vite config file is patched.
	// Targetはパッチ対象のVite設定ファイルを制御します。
	Target TargetConfig `yaml:"target"`

	// Lock controls the advisory lock taken during a mutating run.
	// Lockは変更を伴う実行中に取得するアドバイザリロックを制御します。
	Lock LockConfig `yaml:"lock"`

	// Logging contains log output settings
	// Loggingはログ出力の設定を含みます
	Logging LoggingConfig `yaml:"logging"`

	// Audit contains the journal of mutating invocations
	// Auditは変更を伴う呼び出しの記録を含みます
	Audit AuditConfig `yaml:"audit"`
}

// TargetConfig holds the candidate filenames searched in the working directory.
// TargetConfigは作業ディレクトリで検索される候補ファイル名を保持します。
type TargetConfig struct {
	// Candidates is the ordered list of filenames; the first existing one wins.
	// Candidatesはファイル名の順序付きリストで、最初に存在するものが採用されます。
	Candidates []string `yaml:"candidates"`
}

// LockConfig holds advisory lock settings.
// LockConfigはアドバイザリロックの設定を保持します。
type LockConfig struct {
	// Enabled creates <config>.lock for the duration of a mutating run (default: true)
	// Enabledは変更を伴う実行中に<config>.lockを作成します（デフォルト: true）
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig holds logging-related configuration.
// LoggingConfigはログ関連の設定を保持します。
type LoggingConfig struct {
	// Level sets the minimum log level to output.
	// Valid values: "debug", "info", "warn", "error"
	//
	// Levelは出力する最小ログレベルを設定します。
	// 有効な値: "debug", "info", "warn", "error"
	Level string `yaml:"level"`

	// File additionally writes plain-text logs to this path when set.
	// Fileが設定されている場合、プレーンテキストのログをこのパスにも書き込みます。
	File string `yaml:"file"`
}

// AuditConfig holds audit journal configuration.
// AuditConfigは監査ジャーナルの設定を保持します。
type AuditConfig struct {
	// Enabled activates the audit journal.
	// Enabledは監査ジャーナルを有効化します。
	Enabled bool `yaml:"enabled"`

	// File is the path to write audit records.
	// If empty, records are written to stderr.
	//
	// Fileは監査レコードを書き込むパスです。
	// 空の場合、レコードはstderrに出力されます。
	File string `yaml:"file"`

	// Events specifies which events to record.
	// Eventsは記録するイベントを指定します。
	Events AuditEvents `yaml:"events"`
}

// AuditEvents specifies which event types to include in the journal.
// AuditEventsはジャーナルに含めるイベントタイプを指定します。
type AuditEvents struct {
	// Patch records full policy insertions.
	Patch bool `yaml:"patch"`

	// AddSource records directive appends.
	AddSource bool `yaml:"add_source"`

	// Skipped records runs that ended without mutation (already patched, duplicate source).
	// Skippedは変更なしで終了した実行を記録します（パッチ済み、重複ソース）。
	Skipped bool `yaml:"skipped"`
}

// DefaultCandidates is the fixed search order for Vite config files.
// DefaultCandidatesはVite設定ファイルの固定検索順です。
var DefaultCandidates = []string{
	"vite.config.ts",
	"vite.config.js",
	"vite.config.mjs",
}

// NewDefaultConfig returns a Config with sensible default values.
// NewDefaultConfigは適切なデフォルト値を持つConfigを返します。
func NewDefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			Candidates: append([]string(nil), DefaultCandidates...),
		},
		Lock: LockConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Audit: AuditConfig{
			Enabled: false,
			Events: AuditEvents{
				Patch:     true,
				AddSource: true,
				Skipped:   false,
			},
		},
	}
}

// Load loads configuration from a file.
// If configPath is empty, it searches for configuration in common locations.
//
// Loadはファイルから設定を読み込みます。
// configPathが空の場合、一般的な場所で設定を検索します。
//
// Search order when configPath is empty:
// configPathが空の場合の検索順序：
//  1. ./vitecsp.yaml or ./vitecsp.yml
//  2. ./configs/vitecsp.yaml or ./configs/vitecsp.yml
//  3. ~/.vitecsp/vitecsp.yaml or ~/.vitecsp/vitecsp.yml
//
// Returns default configuration if no config file is found.
// 設定ファイルが見つからない場合はデフォルト設定を返します。
func Load(configPath string) (*Config, error) {
	cfg := NewDefaultConfig()
	var fileToRead string

	if configPath != "" {
		fileToRead = configPath
	} else {
		searchPaths := []string{".", "./configs"}
		if home, err := os.UserHomeDir(); err == nil {
			searchPaths = append(searchPaths, filepath.Join(home, ".vitecsp"))
		}

		// Try each search path with both .yaml and .yml extensions
		// 各検索パスで.yamlと.yml両方の拡張子を試行
		for _, p := range searchPaths {
			for _, ext := range []string{"yaml", "yml"} {
				f := filepath.Join(p, "vitecsp."+ext)
				if _, err := os.Stat(f); err == nil {
					fileToRead = f
					break
				}
			}
			if fileToRead != "" {
				break
			}
		}
	}

	if fileToRead != "" {
		data, err := os.ReadFile(fileToRead)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", fileToRead, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", fileToRead, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing the first validation failure found.
//
// Validateは設定が有効かどうかをチェックします。
// 最初に見つかった検証エラーを説明するエラーを返します。
func (c *Config) Validate() error {
	if len(c.Target.Candidates) == 0 {
		return fmt.Errorf("target.candidates must not be empty")
	}

	// Candidates are names inside the working directory, not paths.
	// 候補は作業ディレクトリ内の名前であり、パスではありません。
	seen := make(map[string]bool, len(c.Target.Candidates))
	for _, name := range c.Target.Candidates {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("target.candidates contains an empty name")
		}
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return fmt.Errorf("invalid candidate %q: must be a plain filename", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate candidate %q", name)
		}
		seen[name] = true
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}
