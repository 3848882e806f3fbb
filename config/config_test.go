package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	withEnv(t, "HOME", t.TempDir())
	withEnv(t, "YASDL_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.SearchPath) != 1 || cfg.SearchPath[0] != "." {
		t.Errorf("expected the default search path, got %v", cfg.SearchPath)
	}
	if cfg.Driver != "" || cfg.LogLevel != "" {
		t.Errorf("expected empty defaults, got %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	schemas := filepath.Join(home, "schemas")
	if err := os.Mkdir(schemas, 0755); err != nil {
		t.Fatal(err)
	}

	rc := `
search-path = ["` + schemas + `", "/does/not/exist"]
driver = "postgresql"
loglevel = "warning"
`
	if err := ioutil.WriteFile(filepath.Join(home, ".yasdlrc"), []byte(rc), 0644); err != nil {
		t.Fatal(err)
	}

	withEnv(t, "HOME", home)
	withEnv(t, "YASDL_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// missing directories are dropped
	if len(cfg.SearchPath) != 2 || cfg.SearchPath[1] != schemas {
		t.Errorf("unexpected search path: %v", cfg.SearchPath)
	}
	if cfg.Driver != "postgresql" {
		t.Errorf("expected driver postgresql, got %q", cfg.Driver)
	}
	if cfg.LogLevel != "warning" {
		t.Errorf("expected loglevel warning, got %q", cfg.LogLevel)
	}
}

func TestLoadYasdlPath(t *testing.T) {
	home := t.TempDir()
	extra := t.TempDir()

	withEnv(t, "HOME", home)
	withEnv(t, "YASDL_PATH", extra)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.SearchPath) != 2 || cfg.SearchPath[1] != extra {
		t.Errorf("expected YASDL_PATH entry, got %v", cfg.SearchPath)
	}
}
