// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/depshed/depshed/internal/config"
	"github.com/depshed/depshed/internal/testutil"
)

const customLocalConfig = `rule: {
	name: "custom"
	coordinates: ["com.example:legacy-api"]
	blocking_types: ["com.example.legacy.Client"]
}
workers: 3
`

func TestConfigShow(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	local := filepath.Join(root, config.LocalConfigFileName)
	testutil.MustWriteFile(t, local, []byte(customLocalConfig))

	ta := newTestApp(t, nil)
	if err := ta.run("config", "show", root); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	out := ta.stdout.String()
	for _, want := range []string{local, "custom", "com.example:legacy-api", "com.example.legacy.Client", "src/main/java", "(none configured)", "format: text"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShow_Defaults(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, defaultsProvider())
	if err := ta.run("config", "show"); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(ta.stdout.String(), "(using defaults)") {
		t.Errorf("config show should report defaults:\n%s", ta.stdout.String())
	}
}

func TestConfigShow_LoadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ta := newTestApp(t, &stubConfigProvider{err: boom})
	if err := ta.run("config", "show"); !errors.Is(err, boom) {
		t.Errorf("config show error = %v, want %v", err, boom)
	}
}

func TestConfigDump_RoundTrips(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, config.LocalConfigFileName), []byte(customLocalConfig))

	ta := newTestApp(t, nil)
	if err := ta.run("config", "dump", root); err != nil {
		t.Fatalf("config dump error = %v", err)
	}
	out := ta.stdout.String()
	for _, want := range []string{`name: "custom"`, "workers: 3", `"com.example:legacy-api",`} {
		if !strings.Contains(out, want) {
			t.Errorf("config dump missing %q:\n%s", want, out)
		}
	}

	// The dump is itself a valid configuration file.
	other := t.TempDir()
	dumped := filepath.Join(other, "dumped.cue")
	testutil.MustWriteFile(t, dumped, ta.stdout.Bytes())
	again := newTestApp(t, nil)
	if err := again.run("--config", dumped, "config", "dump", other); err != nil {
		t.Fatalf("config dump of dumped file error = %v", err)
	}
	if again.stdout.String() != out {
		t.Errorf("dump is not stable:\n%s\n---\n%s", out, again.stdout.String())
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	local := filepath.Join(root, config.LocalConfigFileName)
	testutil.MustWriteFile(t, local, []byte(customLocalConfig))

	ta := newTestApp(t, nil)
	if err := ta.run("config", "path", root); err != nil {
		t.Fatalf("config path error = %v", err)
	}
	out := ta.stdout.String()
	if !strings.Contains(out, "Local config file: "+local) || !strings.Contains(out, "Active: "+local) {
		t.Errorf("config path output:\n%s", out)
	}
}

// Not parallel: changes the working directory.
func TestConfigInit_Local(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(testutil.MustChdir(t, dir))

	ta := newTestApp(t, defaultsProvider())
	if err := ta.run("config", "init", "--local"); err != nil {
		t.Fatalf("config init --local error = %v", err)
	}
	written := testutil.MustReadFile(t, filepath.Join(dir, config.LocalConfigFileName))
	if written != config.GenerateCUE(config.DefaultConfig()) {
		t.Errorf("written config does not match the defaults:\n%s", written)
	}

	err := ta.run("config", "init", "--local")
	if !errors.Is(err, config.ErrConfigExists) || !strings.Contains(err.Error(), "--force") {
		t.Errorf("second init error = %v, want ErrConfigExists with a --force hint", err)
	}

	if err := ta.run("config", "init", "--local", "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}
}

// Not parallel: overrides the user config directory.
func TestConfigInit_User(t *testing.T) {
	home := t.TempDir()
	t.Cleanup(testutil.SetConfigHome(t, home))

	ta := newTestApp(t, defaultsProvider())
	if err := ta.run("config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}

	path, err := config.UserConfigPath("")
	if err != nil {
		t.Fatalf("UserConfigPath() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created at %s: %v", path, err)
	}
	if !strings.Contains(ta.stdout.String(), path) {
		t.Errorf("output should name %s:\n%s", path, ta.stdout.String())
	}
}
