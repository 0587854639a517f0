package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GAMESTATS_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TallyColumn != "Developer(s)" || cfg.TallySeparator != "; " {
		t.Fatalf("unexpected tally settings %q %q", cfg.TallyColumn, cfg.TallySeparator)
	}
	if cfg.KMin != 1 || cfg.KMax != 49 || cfg.CVFolds != 5 || cfg.Seed != 42 {
		t.Fatalf("unexpected search settings %+v", cfg)
	}
	if len(cfg.ReleaseFiles) != 4 {
		t.Fatalf("expected four quarterly files, got %v", cfg.ReleaseFiles)
	}
	if lookupFold(cfg.NewGame, "Developer(s)") != "FromSoftware" {
		t.Fatalf("expected default new game literal, got %v", cfg.NewGame)
	}
}

func TestLoadFlagsOverride(t *testing.T) {
	isolate(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--k-max", "7", "--release-files", "a.csv,b.csv", "--format", "json"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.KMax != 7 {
		t.Fatalf("expected k_max 7, got %d", cfg.KMax)
	}
	if len(cfg.ReleaseFiles) != 2 || cfg.ReleaseFiles[1] != "b.csv" {
		t.Fatalf("unexpected release files %v", cfg.ReleaseFiles)
	}
	if cfg.Format != FormatJSON {
		t.Fatalf("expected json format, got %s", cfg.Format)
	}
}

func TestLoadNewGameFlagAmendsDefaults(t *testing.T) {
	isolate(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--new-game", "Month=3", "--new-game", "developer(s)=Team Cherry"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.NewGame) != len(defaultNewGame) {
		t.Fatalf("expected %d literal columns, got %v", len(defaultNewGame), cfg.NewGame)
	}
	want := map[string]string{
		"Month":        "3",
		"Day":          "25",
		"Developer(s)": "Team Cherry",
		"Publisher(s)": "Bandai Namco Entertainment",
	}
	for k, v := range want {
		if got := lookupFold(cfg.NewGame, k); got != v {
			t.Fatalf("new_game[%s] = %q, want %q", k, got, v)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("GAMESTATS_TALLY_COLUMN", "Publisher(s)")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TallyColumn != "Publisher(s)" {
		t.Fatalf("expected env override, got %s", cfg.TallyColumn)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "gamestats.yaml")
	body := "data_dir: fixtures\nawards_layout: nominees\ncv_folds: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GAMESTATS_CONFIG", path)
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "fixtures" || cfg.AwardsLayout != LayoutNominees || cfg.CVFolds != 3 {
		t.Fatalf("config file not applied: %+v", cfg)
	}
	if got := cfg.AwardsPath(); got != filepath.Join("fixtures", "cleaned_file.csv") {
		t.Fatalf("unexpected awards path %s", got)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"k range":     func(c *Config) { c.KMin = 10; c.KMax = 2 },
		"folds":       func(c *Config) { c.CVFolds = 1 },
		"test size":   func(c *Config) { c.TestSize = 1 },
		"layout":      func(c *Config) { c.AwardsLayout = "wide" },
		"policy":      func(c *Config) { c.UnknownCategories = "guess" },
		"format":      func(c *Config) { c.Format = "xml" },
		"no files":    func(c *Config) { c.ReleaseFiles = nil },
		"parallelism": func(c *Config) { c.Parallelism = 0 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	if err := validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestReleasePathsJoinDataDir(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "d"
	cfg.ReleaseFiles = []string{"q1.csv", "/abs/q2.csv"}
	got := cfg.ReleasePaths()
	if got[0] != filepath.Join("d", "q1.csv") || got[1] != "/abs/q2.csv" {
		t.Fatalf("unexpected paths %v", got)
	}
}

// lookupFold reads m ignoring key case; viper may lowercase map keys.
func lookupFold(m map[string]string, key string) string {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
