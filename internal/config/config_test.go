package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bidsmap/internal/config"
	"bidsmap/internal/faults"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "bidsmap")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Journal.Path != filepath.Join(wantState, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.Journal.Path)
	}
	if cfg.Naming.Policy != config.NamingBIDS {
		t.Fatalf("unexpected naming policy: %q", cfg.Naming.Policy)
	}
	if cfg.Naming.Session != "01" {
		t.Fatalf("unexpected session: %q", cfg.Naming.Session)
	}
	if cfg.Placement.Method != config.MethodCopy {
		t.Fatalf("unexpected method: %q", cfg.Placement.Method)
	}
	if !cfg.Placement.Lock {
		t.Fatal("expected placement lock enabled by default")
	}
	if cfg.Journal.Enabled {
		t.Fatal("expected journal disabled by default")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bidsmap.toml")

	type payload struct {
		Naming struct {
			Policy  string `toml:"policy"`
			Session string `toml:"session"`
		} `toml:"naming"`
		Placement struct {
			Method string `toml:"method"`
		} `toml:"placement"`
		Classifier struct {
			ExtraSkipPatterns []string `toml:"extra_skip_patterns"`
		} `toml:"classifier"`
	}
	custom := payload{}
	custom.Naming.Policy = " Custom "
	custom.Naming.Session = "02"
	custom.Placement.Method = "SYMLINK"
	custom.Classifier.ExtraSkipPatterns = []string{"(?i)aahead", "", "(?i)aahead"}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Naming.Policy != config.NamingCustom {
		t.Fatalf("expected normalized policy, got %q", cfg.Naming.Policy)
	}
	if cfg.Naming.Session != "02" {
		t.Fatalf("expected session 02, got %q", cfg.Naming.Session)
	}
	if cfg.Placement.Method != config.MethodSymlink {
		t.Fatalf("expected symlink method, got %q", cfg.Placement.Method)
	}
	if len(cfg.Classifier.ExtraSkipPatterns) != 1 {
		t.Fatalf("expected deduplicated skip patterns, got %v", cfg.Classifier.ExtraSkipPatterns)
	}
}

func TestLoadMissingExplicitPathIsPathError(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, faults.ErrPath) {
		t.Fatalf("expected path error, got %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"bad policy", "[naming]\npolicy = \"fancy\"\n", "naming.policy"},
		{"bad method", "[placement]\nmethod = \"move\"\n", "placement.method"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"bad pattern", "[classifier]\nextra_skip_patterns = [\"(\"]\n", "extra_skip_patterns"},
		{"session with slash", "[naming]\nsession = \"a/b\"\n", "naming.session"},
		{"unknown key", "[naming]\nunknown = 1\n", "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bidsmap.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, faults.ErrConfig) {
				t.Fatalf("expected config error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Naming.Policy != config.NamingBIDS {
		t.Fatalf("unexpected sample policy %q", cfg.Naming.Policy)
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	info, err := os.Stat(cfg.Paths.StateDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
	if cfg.LockDir() != filepath.Join(cfg.Paths.StateDir, "locks") {
		t.Fatalf("unexpected lock dir %q", cfg.LockDir())
	}
}
