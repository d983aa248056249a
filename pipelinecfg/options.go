package pipelinecfg

import "github.com/butterfly-osm/butterfly-route-core/ids"

// Option customizes a Config after it has been loaded from YAML (or
// from DefaultConfig), mirroring builder.BuilderOption's
// mutate-in-place-over-a-pointer shape: each Option is applied in
// order, later options override earlier ones, and a nil-safe Option
// constructor is a no-op rather than a panic.
type Option func(cfg *Config)

// WithDataDir overrides DataDir. A blank dir is a no-op.
func WithDataDir(dir string) Option {
	return func(cfg *Config) {
		if dir != "" {
			cfg.DataDir = dir
		}
	}
}

// WithModes overrides which modes are enabled. An empty list is a
// no-op, leaving whatever the file (or DefaultConfig) already set.
func WithModes(modes ...ids.Mode) Option {
	return func(cfg *Config) {
		if len(modes) == 0 {
			return
		}
		names := make([]string, len(modes))
		for i, m := range modes {
			names[i] = m.String()
		}
		cfg.Modes = names
	}
}

// WithWorkerConcurrency overrides WorkerConcurrency. A non-positive
// value is a no-op (use 0 explicitly in YAML to mean "all CPUs").
func WithWorkerConcurrency(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.WorkerConcurrency = n
		}
	}
}

// WithLeafThreshold overrides LeafThreshold.
func WithLeafThreshold(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.LeafThreshold = n
		}
	}
}

// WithContractionBatchSize overrides ContractionBatchSize.
func WithContractionBatchSize(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.ContractionBatchSize = n
		}
	}
}

// WithLogLevel overrides LogLevel. A blank level is a no-op.
func WithLogLevel(level string) Option {
	return func(cfg *Config) {
		if level != "" {
			cfg.LogLevel = level
		}
	}
}
