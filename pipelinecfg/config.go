// Package pipelinecfg holds the pipeline-wide ambient configuration
// (concurrency knobs, the per-run directory layout) that every stage
// and the query server read at startup, separate from each stage's
// own data-shaped types.
//
// Grounded on vanderheijden86-beadwork's pkg/config (YAML-backed
// Config with a DefaultConfig/LoadFrom pair, gopkg.in/yaml.v3 tags,
// missing-file-returns-defaults semantics) combined with builder's
// functional-option composition (BuilderOption's
// apply-in-order-over-a-mutable-struct shape, here as Option over
// Config) so callers can either hand-author a YAML file or override
// fields programmatically, or both, since Load applies opts on top of
// whatever the file set.
package pipelinecfg

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/butterfly-osm/butterfly-route-core/coreerr"
	"github.com/butterfly-osm/butterfly-route-core/ids"
)

// Config is the top-level pipeline configuration.
type Config struct {
	// DataDir is the root directory stage artifacts (nbg.bin,
	// ebg.bin, cch.topo.<mode>.bin, ...) are read from and written to
	// (the file layout).
	DataDir string `yaml:"data_dir"`

	// Modes lists which of the three transport modes Stages 5-9 build
	// and serve, by name ("car", "bike", "foot") for a human-editable
	// YAML file; use EnabledModes to get them back as ids.Mode.
	// Defaults to all three.
	Modes []string `yaml:"modes"`

	// WorkerConcurrency is a worker-goroutine count for the parallel
	// stage regions, as resolved by ResolvedWorkerConcurrency (zero
	// means runtime.NumCPU()). No stage package reads it; nbg's edge
	// emission, for one, sizes its pool from runtime.GOMAXPROCS.
	WorkerConcurrency int `yaml:"worker_concurrency"`

	// LeafThreshold overrides order.LeafThreshold (the nested
	// dissection recursion floor). Zero means use order's own default.
	LeafThreshold int `yaml:"leaf_threshold"`

	// ContractionBatchSize overrides contract.BatchSize.
	// Zero means use contract's own default.
	ContractionBatchSize int `yaml:"contraction_batch_size"`

	// CancellationPollRelaxations is a relaxation count between deadline
	// checks of a query search. The query package does not read it.
	CancellationPollRelaxations int `yaml:"cancellation_poll_relaxations"`

	// SanityBoundDS is a configured value for the validation ceiling
	// (the 24h satmath.SanityBound). satmath.WithinSanityBound uses its
	// own constant and does not read it.
	SanityBoundDS uint32 `yaml:"sanity_bound_ds"`

	// LogLevel is a minimum log level ("debug", "info", "warn",
	// "error"). No package in this module logs, so nothing reads it.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults: every mode
// enabled, worker concurrency left at 0 (resolved to NumCPU at use
// time), stage defaults left at 0 (meaning "use the stage package's
// own constant"), and info-level logging.
func DefaultConfig() Config {
	return Config{
		Modes:                       []string{ids.ModeCar.String(), ids.ModeBike.String(), ids.ModeFoot.String()},
		CancellationPollRelaxations: 1000,
		LogLevel:                    "info",
	}
}

// Load reads pipeline configuration from path, falling back to
// DefaultConfig if the file does not exist, then applies opts on top,
// mirroring beadwork's LoadFrom missing-file tolerance, extended with
// builder's functional-option layering for programmatic overrides
// (flags, test fixtures) that should win over the file.
func Load(path string, opts ...Option) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: reading pipeline config: %v", coreerr.ErrConfigurationError, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing pipeline config: %v", coreerr.ErrConfigurationError, err)
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: marshaling pipeline config: %v", coreerr.ErrConfigurationError, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing pipeline config: %v", coreerr.ErrConfigurationError, err)
	}
	return nil
}

// Validate rejects configurations a stage cannot run with: an empty
// data directory, no enabled modes, or a non-positive poll interval.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", coreerr.ErrConfigurationError)
	}
	if len(c.Modes) == 0 {
		return fmt.Errorf("%w: at least one mode must be enabled", coreerr.ErrConfigurationError)
	}
	for _, name := range c.Modes {
		if _, ok := ids.ParseMode(name); !ok {
			return fmt.Errorf("%w: unknown mode %q", coreerr.ErrConfigurationError, name)
		}
	}
	if c.CancellationPollRelaxations <= 0 {
		return fmt.Errorf("%w: cancellation_poll_relaxations must be positive", coreerr.ErrConfigurationError)
	}
	return nil
}

// EnabledModes parses Modes into ids.Mode values, skipping any name
// that failed Validate (callers normally validate first, so this
// never silently drops anything in practice).
func (c Config) EnabledModes() []ids.Mode {
	out := make([]ids.Mode, 0, len(c.Modes))
	for _, name := range c.Modes {
		if m, ok := ids.ParseMode(name); ok {
			out = append(out, m)
		}
	}
	return out
}

// ResolvedWorkerConcurrency returns WorkerConcurrency, or
// runtime.NumCPU() if it was left at its zero value.
func (c Config) ResolvedWorkerConcurrency() int {
	if c.WorkerConcurrency > 0 {
		return c.WorkerConcurrency
	}
	return runtime.NumCPU()
}

// HasMode reports whether mode is among the enabled Modes.
func (c Config) HasMode(mode ids.Mode) bool {
	for _, name := range c.Modes {
		if name == mode.String() {
			return true
		}
	}
	return false
}
