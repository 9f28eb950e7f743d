// commands_test.go verifies that commands are registered with the expected
// names, flags, and argument validation. Execution is covered by run_test.go.
//
// commands_test.goはコマンドが期待される名前、フラグ、引数検証で
// 登録されていることを確認します。実行はrun_test.goでテストします。
package cli

import (
	"testing"
)

// TestRootCommandSubcommands verifies that all subcommands are registered.
// TestRootCommandSubcommandsはすべてのサブコマンドが登録されていることを確認します。
func TestRootCommandSubcommands(t *testing.T) {
	expected := []string{"add-source", "from-error", "status", "template", "version"}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

// TestRootPersistentFlags verifies the flags shared by every subcommand.
// TestRootPersistentFlagsはすべてのサブコマンドで共有されるフラグを確認します。
func TestRootPersistentFlags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"config", "", ""},
		{"dir", "C", "."},
		{"log-level", "", ""},
		{"log-file", "", ""},
		{"verbose", "v", "false"},
		{"dry-run", "", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("flag %q not found", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("Expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("Expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestAddSourceFlag verifies that --add-source lives on the root command only.
// TestAddSourceFlagは--add-sourceがルートコマンドのみにあることを確認します。
func TestAddSourceFlag(t *testing.T) {
	if rootCmd.Flags().Lookup("add-source") == nil {
		t.Fatal("add-source flag not found on root command")
	}
	if rootCmd.PersistentFlags().Lookup("add-source") != nil {
		t.Error("add-source must not be inherited by subcommands")
	}
}

// TestCommandArgs verifies argument validation of each command.
// TestCommandArgsは各コマンドの引数検証を確認します。
func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"add-source", nil, false},
		{"add-source", []string{"connect-src", "https://a.example.com"}, false},
		{"add-source", []string{"a", "b", "c"}, true},
		{"from-error", []string{"msg"}, false},
		{"from-error", []string{"a", "b"}, true},
		{"status", []string{"x"}, true},
		{"template", []string{"x"}, true},
		{"version", nil, false},
	}

	for _, tt := range tests {
		cmd, _, err := rootCmd.Find([]string{tt.name})
		if err != nil {
			t.Fatalf("command %q not found: %v", tt.name, err)
		}
		if cmd.Args == nil {
			t.Errorf("%s should have Args validation", tt.name)
			continue
		}
		err = cmd.Args(cmd, tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s %v: error = %v, wantErr %v", tt.name, tt.args, err, tt.wantErr)
		}
	}
}

// TestCommandsHaveDescriptions verifies every command documents itself.
func TestCommandsHaveDescriptions(t *testing.T) {
	if rootCmd.Short == "" {
		t.Error("root command should have a short description")
	}
	for _, cmd := range rootCmd.Commands() {
		if cmd.Short == "" {
			t.Errorf("%s should have a short description", cmd.Name())
		}
	}
}

// TestRootArgs verifies that stray arguments are rejected.
func TestRootArgs(t *testing.T) {
	if err := rootCmd.Args(rootCmd, []string{"vite.config.ts"}); err == nil {
		t.Error("root command should reject positional arguments")
	}
}
