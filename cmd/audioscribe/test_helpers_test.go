package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"audioscribe/internal/config"
	"audioscribe/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()

	content := fmt.Sprintf(`[paths]
output_dir = %q
library_dir = %q
log_dir = %q
data_dir = %q

[tools]
ytdlp_binary = %q
ffprobe_binary = %q
download_timeout = %d
probe_timeout = %d

[verify]
strict = %t

[logging]
format = "json"
level = "error"
`,
		cfg.Paths.OutputDir,
		cfg.Paths.LibraryDir,
		cfg.Paths.LogDir,
		cfg.Paths.DataDir,
		cfg.Tools.YtDlpBinary,
		cfg.Tools.FFprobeBinary,
		cfg.Tools.DownloadTimeout,
		cfg.Tools.ProbeTimeout,
		cfg.Verify.Strict,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
