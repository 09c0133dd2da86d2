package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all trainer configuration
type Config struct {
	Training TrainingConfig
	Source   SourceConfig
	LogLevel string // Log level (default: "info")
}

// TrainingConfig holds centroid training configuration
type TrainingConfig struct {
	Lists          int    // Number of centroids to train (default: 100)
	Metric         string // Distance metric: "l2" or "angular" (default: "l2")
	MaxIterations  int    // Cap on Lloyd iterations (default: 500)
	MemBudgetMB    int64  // Memory budget for training in MB (default: 2048)
	Seed           int64  // Random seed; 0 means seed from wall clock
	SamplesPerList int    // Reservoir size per centroid (default: 50)
}

// SourceConfig holds sample source configuration
type SourceConfig struct {
	Path   string // SQLite database path
	Table  string // Table holding embedding blobs (default: "embeddings")
	Column string // Column holding embedding blobs (default: "vector")
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Training: TrainingConfig{
			Lists:          100,
			Metric:         "l2",
			MaxIterations:  500,
			MemBudgetMB:    2048,
			Seed:           0,
			SamplesPerList: 50,
		},
		Source: SourceConfig{
			Table:  "embeddings",
			Column: "vector",
		},
		LogLevel: "info",
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := Default()

	if lists := os.Getenv("CENTROID_LISTS"); lists != "" {
		if v, err := strconv.Atoi(lists); err == nil {
			cfg.Training.Lists = v
		}
	}
	if metric := os.Getenv("CENTROID_METRIC"); metric != "" {
		cfg.Training.Metric = metric
	}
	if iters := os.Getenv("CENTROID_MAX_ITERATIONS"); iters != "" {
		if v, err := strconv.Atoi(iters); err == nil {
			cfg.Training.MaxIterations = v
		}
	}
	if budget := os.Getenv("CENTROID_MEM_BUDGET_MB"); budget != "" {
		if v, err := strconv.ParseInt(budget, 10, 64); err == nil {
			cfg.Training.MemBudgetMB = v
		}
	}
	if seed := os.Getenv("CENTROID_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Training.Seed = v
		}
	}
	if spl := os.Getenv("CENTROID_SAMPLES_PER_LIST"); spl != "" {
		if v, err := strconv.Atoi(spl); err == nil {
			cfg.Training.SamplesPerList = v
		}
	}

	if path := os.Getenv("CENTROID_SOURCE_PATH"); path != "" {
		cfg.Source.Path = path
	}
	if table := os.Getenv("CENTROID_SOURCE_TABLE"); table != "" {
		cfg.Source.Table = table
	}
	if column := os.Getenv("CENTROID_SOURCE_COLUMN"); column != "" {
		cfg.Source.Column = column
	}

	if level := os.Getenv("CENTROID_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Training.Lists < 1 {
		return fmt.Errorf("invalid lists: %d (must be > 0)", c.Training.Lists)
	}
	if c.Training.Metric != "l2" && c.Training.Metric != "angular" {
		return fmt.Errorf("invalid metric: %q (must be l2 or angular)", c.Training.Metric)
	}
	if c.Training.MaxIterations < 1 {
		return fmt.Errorf("invalid max iterations: %d (must be > 0)", c.Training.MaxIterations)
	}
	if c.Training.MemBudgetMB < 1 {
		return fmt.Errorf("invalid memory budget: %d MB (must be > 0)", c.Training.MemBudgetMB)
	}
	if c.Training.SamplesPerList < 1 {
		return fmt.Errorf("invalid samples per list: %d (must be > 0)", c.Training.SamplesPerList)
	}

	return nil
}

// MemBudgetBytes returns the training memory budget in bytes
func (c *TrainingConfig) MemBudgetBytes() int64 {
	return c.MemBudgetMB << 20
}

// SampleCap returns the reservoir capacity for a training run
func (c *TrainingConfig) SampleCap() int {
	return c.Lists * c.SamplesPerList
}
