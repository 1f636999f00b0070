package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ffprobeStub = `#!/bin/sh
case "$*" in
  *-version*) echo "ffprobe version 7.1-test" ;;
  *nb_read_packets*) echo "100," ;;
  *format=duration*) echo "10.000000" ;;
  *-show_streams*) echo '{"streams":[{"index":0,"codec_type":"video","codec_name":"h264","width":1920,"height":1080},{"index":1,"codec_type":"audio","codec_name":"aac"}],"format":{"size":"5000000","duration":"10.0"}}' ;;
  *) exit 1 ;;
esac
`

const ffmpegStub = `#!/bin/sh
case "$*" in
  *-version*) echo "ffmpeg version 7.1-test"; exit 0 ;;
esac
for last; do :; done
printf 'frame=50\nfps=25.0\nprogress=continue\nframe=100\nfps=25.0\nprogress=end\n'
if [ "$last" != "/dev/null" ]; then
  head -c 1000 /dev/zero > "$last"
fi
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	stateDir   string
	mediaDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))

	binDir := filepath.Join(base, "bin")
	mediaDir := filepath.Join(base, "media")
	for _, dir := range []string{binDir, mediaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	ffmpegPath := filepath.Join(binDir, "ffmpeg")
	ffprobePath := filepath.Join(binDir, "ffprobe")
	if err := os.WriteFile(ffmpegPath, []byte(ffmpegStub), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	if err := os.WriteFile(ffprobePath, []byte(ffprobeStub), 0o755); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		stateDir:   filepath.Join(base, "state"),
		mediaDir:   mediaDir,
	}
	content := fmt.Sprintf(`[tools]
ffmpeg = %q
ffprobe = %q

[paths]
log_dir = %q
state_dir = %q

[history]
enabled = true
`, ffmpegPath, ffprobePath, filepath.Join(base, "logs"), env.stateDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.mediaDir, name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x1}, 4096), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
