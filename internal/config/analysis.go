package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
// It is the single source of truth for default analysis parameters.
const DefaultConfigPath = "config/analysis.defaults.json"

// AnalysisConfig holds tunable parameters for the trajectory pipeline
// and its reporting tools. Fields are pointers so a partial JSON file
// overrides only what it names; use the getter methods for resolved
// values with defaults applied.
type AnalysisConfig struct {
	// TimestampUnit is the duration of one timestamp tick in the input
	// feed, as a duration string ("1ms", "1s", ...).
	TimestampUnit *string `json:"timestamp_unit,omitempty"`

	// AllocatorLimitElements caps total output-column elements per
	// derive invocation. Zero means unlimited.
	AllocatorLimitElements *int64 `json:"allocator_limit_elements,omitempty"`

	// ReportMaxPoints bounds the number of scatter points rendered in
	// HTML reports; larger runs are downsampled by stride.
	ReportMaxPoints *int `json:"report_max_points,omitempty"`

	// MinTrajectoryPoints filters trajectories shorter than this from
	// reports and summaries (derive results always keep them).
	MinTrajectoryPoints *int `json:"min_trajectory_points,omitempty"`

	// SpeedCapMps excludes implausible average speeds from the speed
	// summary (sensor glitches, id collisions).
	SpeedCapMps *float64 `json:"speed_cap_mps,omitempty"`
}

// Default values applied when the JSON omits a field.
const (
	defaultTimestampUnit       = time.Millisecond
	defaultReportMaxPoints     = 8000
	defaultMinTrajectoryPoints = 1
	defaultSpeedCapMps         = 70.0
)

// GetTimestampUnit returns the configured tick duration, defaulting to
// one millisecond. Unparseable values also fall back to the default.
func (c *AnalysisConfig) GetTimestampUnit() time.Duration {
	if c == nil || c.TimestampUnit == nil {
		return defaultTimestampUnit
	}
	d, err := time.ParseDuration(*c.TimestampUnit)
	if err != nil || d <= 0 {
		return defaultTimestampUnit
	}
	return d
}

// GetAllocatorLimitElements returns the allocation budget, 0 = unlimited.
func (c *AnalysisConfig) GetAllocatorLimitElements() int64 {
	if c == nil || c.AllocatorLimitElements == nil {
		return 0
	}
	return *c.AllocatorLimitElements
}

// GetReportMaxPoints returns the report downsampling bound.
func (c *AnalysisConfig) GetReportMaxPoints() int {
	if c == nil || c.ReportMaxPoints == nil || *c.ReportMaxPoints < 1 {
		return defaultReportMaxPoints
	}
	return *c.ReportMaxPoints
}

// GetMinTrajectoryPoints returns the report-level trajectory length filter.
func (c *AnalysisConfig) GetMinTrajectoryPoints() int {
	if c == nil || c.MinTrajectoryPoints == nil || *c.MinTrajectoryPoints < 1 {
		return defaultMinTrajectoryPoints
	}
	return *c.MinTrajectoryPoints
}

// GetSpeedCapMps returns the plausibility cap for summary speeds.
func (c *AnalysisConfig) GetSpeedCapMps() float64 {
	if c == nil || c.SpeedCapMps == nil || *c.SpeedCapMps <= 0 {
		return defaultSpeedCapMps
	}
	return *c.SpeedCapMps
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file. The path
// must have a .json extension and be under the size cap; fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &AnalysisConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", cleanPath, err)
	}
	return cfg, nil
}
