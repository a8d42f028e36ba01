package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/depth.report/internal/depthbin"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds depth-discretisation and grid parameters. Fields
// are pointers so a JSON file only overrides what it sets; the Get*
// methods supply defaults for everything else. The schema matches the
// depthmap CLI flags so the same JSON works for both.
type TuningConfig struct {
	// Depth discretisation params
	DiscretizeMode *string  `json:"discretize_mode,omitempty"`
	DepthMin       *float64 `json:"depth_min,omitempty"`
	DepthMax       *float64 `json:"depth_max,omitempty"`
	NumBins        *int     `json:"num_bins,omitempty"`

	// Frustum grid params (depth, height, width order)
	GridShape *[3]int `json:"grid_shape,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a fully-populated config carrying the
// stock KITTI-style depth range and bin count.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		DiscretizeMode: ptrString(string(depthbin.LID)),
		DepthMin:       ptrFloat64(2.0),
		DepthMax:       ptrFloat64(46.8),
		NumBins:        ptrInt(80),
		GridShape:      &[3]int{80, 94, 310},
	}
}

// LoadTuningConfig loads tuning parameters from a JSON file.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the config as indented JSON.
func (c *TuningConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.DiscretizeMode != nil {
		if !depthbin.Mode(*c.DiscretizeMode).IsValid() {
			return fmt.Errorf("discretize_mode must be one of %s, got %q", depthbin.ValidModesString(), *c.DiscretizeMode)
		}
	}

	if c.NumBins != nil {
		if *c.NumBins <= 0 {
			return fmt.Errorf("num_bins must be positive, got %d", *c.NumBins)
		}
	}

	if c.DepthMin != nil && c.DepthMax != nil {
		if *c.DepthMax <= *c.DepthMin {
			return fmt.Errorf("depth_max (%f) must exceed depth_min (%f)", *c.DepthMax, *c.DepthMin)
		}
	}

	if c.GridShape != nil {
		for i, s := range *c.GridShape {
			if s < 2 {
				return fmt.Errorf("grid_shape[%d] must be at least 2, got %d", i, s)
			}
		}
	}

	return nil
}

// GetDiscretizeMode returns the configured mode or the LID default.
func (c *TuningConfig) GetDiscretizeMode() depthbin.Mode {
	if c.DiscretizeMode == nil || *c.DiscretizeMode == "" {
		return depthbin.LID // default
	}
	return depthbin.Mode(*c.DiscretizeMode)
}

// GetDepthMin returns the configured minimum depth or the default.
func (c *TuningConfig) GetDepthMin() float64 {
	if c.DepthMin == nil {
		return 2.0 // default
	}
	return *c.DepthMin
}

// GetDepthMax returns the configured maximum depth or the default.
func (c *TuningConfig) GetDepthMax() float64 {
	if c.DepthMax == nil {
		return 46.8 // default
	}
	return *c.DepthMax
}

// GetNumBins returns the configured bin count or the default.
func (c *TuningConfig) GetNumBins() int {
	if c.NumBins == nil {
		return 80 // default
	}
	return *c.NumBins
}

// GetGridShape returns the configured grid extents or the default.
func (c *TuningConfig) GetGridShape() [3]int {
	if c.GridShape == nil {
		return [3]int{80, 94, 310} // default
	}
	return *c.GridShape
}
