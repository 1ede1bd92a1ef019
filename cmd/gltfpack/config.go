package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/rsahlin/gltf-io-sub001/common"
)

// Config is the content of a gltfpack.toml file. Flags given on the command line
// take precedence over values read from the file.
type Config struct {
	Pack  PackConfig  `toml:"pack"`
	Log   LogConfig   `toml:"log"`
	Watch WatchConfig `toml:"watch"`
}

// PackConfig controls how sources are packed.
type PackConfig struct {
	// Output is the container path; only valid with a single source.
	Output string `toml:"output"`
	// OutDir receives <source>.gltfpack files; defaults to each source's directory.
	OutDir   string `toml:"out_dir"`
	Variant  string `toml:"variant"`
	Progress bool   `toml:"progress"`
	// Workers sizes the pool used for asynchronous container reads.
	Workers int `toml:"workers"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level      string `toml:"level"`
	Timestamps bool   `toml:"timestamps"`
}

// WatchConfig controls gltfpack watch.
type WatchConfig struct {
	Debounce string `toml:"debounce"`
}

const (
	defaultConfigPath = "gltfpack.toml"
	defaultDebounce   = 250 * time.Millisecond
	containerExt      = ".gltfpack"
)

func defaultConfig() Config {
	return Config{
		Pack:  PackConfig{Variant: "scene", Progress: true, Workers: runtime.NumCPU()},
		Log:   LogConfig{Level: "info", Timestamps: true},
		Watch: WatchConfig{Debounce: defaultDebounce.String()},
	}
}

// loadConfig reads a TOML file over the defaults. A missing file at the default path
// is not an error; a missing file the user named is.
//
// Parameters:
//   - path: the config file path
//   - explicit: true if the user passed the path
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read or decoded
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// flags are the options shared by every subcommand.
type flags struct {
	config   string
	output   string
	outDir   string
	variant  string
	level    string
	workers  int
	quiet    bool
	debounce time.Duration
}

func (f *flags) register(set *flag.FlagSet) {
	set.StringVar(&f.config, "config", "", "TOML config file (default "+defaultConfigPath+" if present)")
	set.StringVar(&f.output, "o", "", "output container path (single source only)")
	set.StringVar(&f.outDir, "dir", "", "output directory for containers")
	set.StringVar(&f.variant, "variant", "", "container variant: scene or geometry")
	set.StringVar(&f.level, "log-level", "", "log level: debug, info, warn, error")
	set.IntVar(&f.workers, "workers", 0, "worker pool size for asynchronous reads")
	set.BoolVar(&f.quiet, "quiet", false, "disable the progress bar")
	set.DurationVar(&f.debounce, "debounce", 0, "delay before re-packing a changed source")
}

// resolve loads the config file and overlays the flags that were set.
func (f *flags) resolve() (Config, error) {
	cfg, err := loadConfig(common.Coalesce(f.config, defaultConfigPath), f.config != "")
	if err != nil {
		return cfg, err
	}
	cfg.Pack.Output = common.Coalesce(f.output, cfg.Pack.Output)
	cfg.Pack.OutDir = common.Coalesce(f.outDir, cfg.Pack.OutDir)
	cfg.Pack.Variant = common.Coalesce(f.variant, cfg.Pack.Variant)
	cfg.Pack.Workers = common.Coalesce(f.workers, cfg.Pack.Workers, 1)
	cfg.Log.Level = common.Coalesce(f.level, cfg.Log.Level)
	if f.quiet {
		cfg.Pack.Progress = false
	}
	if f.debounce > 0 {
		cfg.Watch.Debounce = f.debounce.String()
	}
	return cfg, nil
}

// debounce returns the parsed watch delay.
func (c WatchConfig) debounce() (time.Duration, error) {
	if c.Debounce == "" {
		return defaultDebounce, nil
	}
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch debounce %q: %w", c.Debounce, err)
	}
	return d, nil
}

// newLogger builds the stderr logger described by c.
func newLogger(c LogConfig) (*log.Logger, error) {
	level, err := log.ParseLevel(common.Coalesce(c.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: c.Timestamps,
		Prefix:          "gltfpack",
		Level:           level,
	}), nil
}
