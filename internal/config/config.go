package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// AwardsLayout selects how the awards table is read.
type AwardsLayout string

const (
	// LayoutRows: one row per title, count of filled category cells.
	LayoutRows AwardsLayout = "rows"
	// LayoutNominees: category cells name titles, count of mentions.
	LayoutNominees AwardsLayout = "nominees"
)

// UnknownPolicy decides what happens to literal values unseen at fit time.
type UnknownPolicy string

const (
	UnknownIgnore UnknownPolicy = "ignore"
	UnknownError  UnknownPolicy = "error"
)

type Config struct {
	DataDir           string            `mapstructure:"data_dir"`
	ReleaseFiles      []string          `mapstructure:"release_files"`
	TallyColumn       string            `mapstructure:"tally_column"`
	TallySeparator    string            `mapstructure:"tally_separator"`
	Top               int               `mapstructure:"top"`
	CleanPattern      string            `mapstructure:"clean_pattern"`
	DropColumns       []string          `mapstructure:"drop_columns"`
	AwardsFile        string            `mapstructure:"awards_file"`
	AwardsSentinel    string            `mapstructure:"awards_sentinel"`
	AwardsSkipRows    int               `mapstructure:"awards_skip_rows"`
	AwardsSkipCols    int               `mapstructure:"awards_skip_cols"`
	AwardsLayout      AwardsLayout      `mapstructure:"awards_layout"`
	TitleColumn       string            `mapstructure:"title_column"`
	TargetColumn      string            `mapstructure:"target_column"`
	CategoricalCols   []string          `mapstructure:"categorical_columns"`
	DropTrailingRow   bool              `mapstructure:"drop_trailing_row"`
	TestSize          float64           `mapstructure:"test_size"`
	Seed              uint64            `mapstructure:"seed"`
	CVFolds           int               `mapstructure:"cv_folds"`
	KMin              int               `mapstructure:"k_min"`
	KMax              int               `mapstructure:"k_max"`
	UnknownCategories UnknownPolicy     `mapstructure:"unknown_categories"`
	NewGame           map[string]string `mapstructure:"new_game"`
	Format            Format            `mapstructure:"format"`
	LogLevel          string            `mapstructure:"log_level"`
	Parallelism       int               `mapstructure:"parallelism"`
}

var (
	defaultReleaseFiles = []string{"January-March.csv", "April-June.csv", "July-September.csv", "October-December.csv"}
	defaultCategorical  = []string{"Month", "Day", "Platform(s)", "Genre(s)", "Developer(s)", "Publisher(s)"}
	defaultNewGame      = map[string]string{
		"Month":        "2",
		"Day":          "25",
		"Platform(s)":  "Win, PS4, PS5, XBO, XSX",
		"Genre(s)":     "Action-Role-playing",
		"Developer(s)": "FromSoftware",
		"Publisher(s)": "Bandai Namco Entertainment",
	}
)

func defaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("release_files", defaultReleaseFiles)
	v.SetDefault("tally_column", "Developer(s)")
	v.SetDefault("tally_separator", "; ")
	v.SetDefault("top", 1)
	v.SetDefault("clean_pattern", "*CLEAN.csv")
	v.SetDefault("drop_columns", []string{"Ref."})
	v.SetDefault("awards_file", "cleaned_file.csv")
	v.SetDefault("awards_sentinel", "—")
	v.SetDefault("awards_skip_rows", 2)
	v.SetDefault("awards_skip_cols", 2)
	v.SetDefault("awards_layout", string(LayoutRows))
	v.SetDefault("title_column", "Title")
	v.SetDefault("target_column", "Awards")
	v.SetDefault("categorical_columns", defaultCategorical)
	v.SetDefault("drop_trailing_row", true)
	v.SetDefault("test_size", 0.2)
	v.SetDefault("seed", 42)
	v.SetDefault("cv_folds", 5)
	v.SetDefault("k_min", 1)
	v.SetDefault("k_max", 49)
	v.SetDefault("unknown_categories", string(UnknownIgnore))
	v.SetDefault("new_game", defaultNewGame)
	v.SetDefault("format", string(FormatText))
	v.SetDefault("log_level", "info")
	v.SetDefault("parallelism", 1)
}

// RegisterFlags adds every config key as a flag on fs. Flag names use
// dashes; they bind to the underscore keys of the same name.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Config file path (yaml|json|toml)")
	fs.String("data-dir", "data", "Directory holding the input CSV files")
	fs.StringSlice("release-files", defaultReleaseFiles, "Quarterly release CSVs, relative to data-dir (repeatable)")
	fs.String("tally-column", "Developer(s)", "List column to tally")
	fs.String("tally-separator", "; ", "Separator inside the tallied column")
	fs.Int("top", 1, "Number of leading companies to list")
	fs.String("clean-pattern", "*CLEAN.csv", "Glob for release files used by the predictor")
	fs.StringSlice("drop-columns", []string{"Ref."}, "Columns removed after merging release files")
	fs.String("awards-file", "cleaned_file.csv", "Awards CSV, relative to data-dir")
	fs.String("awards-sentinel", "—", "Cell value treated as missing in the awards CSV")
	fs.Int("awards-skip-rows", 2, "Leading awards data rows to skip")
	fs.Int("awards-skip-cols", 2, "Leading awards columns to skip")
	fs.String("awards-layout", string(LayoutRows), "Awards layout: rows|nominees")
	fs.String("title-column", "Title", "Join key column")
	fs.String("target-column", "Awards", "Name of the joined award count column")
	fs.StringSlice("categorical-columns", defaultCategorical, "Columns to one-hot encode")
	fs.Bool("drop-trailing-row", true, "Drop the last row of the merged release table")
	fs.Float64("test-size", 0.2, "Held-out fraction")
	fs.Uint64("seed", 42, "Split seed")
	fs.Int("cv-folds", 5, "Cross-validation folds")
	fs.Int("k-min", 1, "Smallest neighbor count searched")
	fs.Int("k-max", 49, "Largest neighbor count searched")
	fs.String("unknown-categories", string(UnknownIgnore), "Unseen literal values: ignore|error")
	fs.StringToString("new-game", defaultNewGame, "Literal column=value pairs for the predicted game")
	fs.String("format", string(FormatText), "Output format: text|json")
	fs.String("log-level", "info", "Log level")
	fs.Int("parallelism", 1, "Maximum concurrent file loads and fold preparations")
}

// Load resolves configuration from defaults, config file, environment and
// the already-parsed flags in fs (which may be nil).
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("GAMESTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfgPathFlag string
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			cfgPathFlag = f.Value.String()
		}
	}

	// Config file resolution
	cfgPath := cfgPathFlag
	if cfgPath == "" {
		cfgPath = os.Getenv("GAMESTATS_CONFIG")
	}
	if cfgPath != "" {
		if err := readConfigFile(v, cfgPath); err != nil {
			return Config{}, err
		}
	} else if err := readDefaultConfig(v); err != nil {
		return Config{}, err
	}

	// Flags override config. --new-game pairs amend the literal below them
	// rather than replace it.
	baseNewGame := v.GetStringMapString("new_game")
	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("bind flags: %w", bindErr)
		}
		if f := fs.Lookup("new-game"); f != nil && f.Changed {
			pairs, err := fs.GetStringToString("new-game")
			if err != nil {
				return Config{}, fmt.Errorf("read new-game flag: %w", err)
			}
			v.Set("new_game", mergeFold(baseNewGame, pairs))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with no file, env or flag overrides.
func Default() Config {
	return Config{
		DataDir:           "data",
		ReleaseFiles:      append([]string(nil), defaultReleaseFiles...),
		TallyColumn:       "Developer(s)",
		TallySeparator:    "; ",
		Top:               1,
		CleanPattern:      "*CLEAN.csv",
		DropColumns:       []string{"Ref."},
		AwardsFile:        "cleaned_file.csv",
		AwardsSentinel:    "—",
		AwardsSkipRows:    2,
		AwardsSkipCols:    2,
		AwardsLayout:      LayoutRows,
		TitleColumn:       "Title",
		TargetColumn:      "Awards",
		CategoricalCols:   append([]string(nil), defaultCategorical...),
		DropTrailingRow:   true,
		TestSize:          0.2,
		Seed:              42,
		CVFolds:           5,
		KMin:              1,
		KMax:              49,
		UnknownCategories: UnknownIgnore,
		NewGame:           copyMap(defaultNewGame),
		Format:            FormatText,
		LogLevel:          "info",
		Parallelism:       1,
	}
}

// ReleasePaths returns the release files joined onto DataDir.
func (c Config) ReleasePaths() []string {
	out := make([]string, 0, len(c.ReleaseFiles))
	for _, f := range c.ReleaseFiles {
		if filepath.IsAbs(f) {
			out = append(out, f)
			continue
		}
		out = append(out, filepath.Join(c.DataDir, f))
	}
	return out
}

// AwardsPath returns the awards CSV path joined onto DataDir.
func (c Config) AwardsPath() string {
	if filepath.IsAbs(c.AwardsFile) {
		return c.AwardsFile
	}
	return filepath.Join(c.DataDir, c.AwardsFile)
}

func validate(cfg Config) error {
	if cfg.DataDir == "" {
		return errors.New("config: data_dir is required")
	}
	if len(cfg.ReleaseFiles) == 0 {
		return errors.New("config: release_files must not be empty")
	}
	if cfg.TallyColumn == "" || cfg.TallySeparator == "" {
		return errors.New("config: tally_column and tally_separator are required")
	}
	if cfg.Top <= 0 {
		return errors.New("config: top must be > 0")
	}
	if cfg.AwardsLayout != LayoutRows && cfg.AwardsLayout != LayoutNominees {
		return fmt.Errorf("config: awards_layout must be one of [%s,%s]", LayoutRows, LayoutNominees)
	}
	if cfg.AwardsSkipRows < 0 || cfg.AwardsSkipCols < 0 {
		return errors.New("config: awards_skip_rows and awards_skip_cols must be >= 0")
	}
	if cfg.TitleColumn == "" || cfg.TargetColumn == "" {
		return errors.New("config: title_column and target_column are required")
	}
	if cfg.TestSize <= 0 || cfg.TestSize >= 1 {
		return errors.New("config: test_size must be in (0,1)")
	}
	if cfg.CVFolds < 2 {
		return errors.New("config: cv_folds must be >= 2")
	}
	if cfg.KMin < 1 || cfg.KMin > cfg.KMax {
		return errors.New("config: need 1 <= k_min <= k_max")
	}
	if cfg.UnknownCategories != UnknownIgnore && cfg.UnknownCategories != UnknownError {
		return fmt.Errorf("config: unknown_categories must be one of [%s,%s]", UnknownIgnore, UnknownError)
	}
	if cfg.Format != FormatText && cfg.Format != FormatJSON {
		return fmt.Errorf("config: format must be one of [%s,%s]", FormatText, FormatJSON)
	}
	if cfg.Parallelism < 1 {
		return errors.New("config: parallelism must be >= 1")
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

func readDefaultConfig(v *viper.Viper) error {
	paths := defaultConfigCandidates()
	exts := []string{"yaml", "yml", "json", "toml"}
	for _, base := range paths {
		for _, ext := range exts {
			candidate := base + "." + ext
			if _, err := os.Stat(candidate); err == nil {
				v.SetConfigFile(candidate)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read default config %s: %w", candidate, err)
				}
				return nil
			}
		}
	}
	return nil
}

func defaultConfigCandidates() []string {
	var out []string
	cwd, _ := os.Getwd()
	if cwd != "" {
		out = append(out,
			filepath.Join(cwd, "gamestats"),
			filepath.Join(cwd, "config", "gamestats"),
		)
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			xdg = filepath.Join(home, ".config")
		}
	}
	if xdg != "" {
		out = append(out, filepath.Join(xdg, "gamestats", "config"))
	}
	return out
}

// mergeFold overlays top on base. A key in top replaces any base key that
// differs only in case.
func mergeFold(base, top map[string]string) map[string]string {
	out := copyMap(base)
	for k, v := range top {
		for bk := range out {
			if strings.EqualFold(bk, k) {
				delete(out, bk)
			}
		}
		out[k] = v
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
