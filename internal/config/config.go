// Package config loads CLI defaults for flatten runs from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrConfigTooLarge = errors.New("config file exceeds maximum size")
)

// MaxConfigSize limits config input to prevent memory exhaustion (1MB).
const MaxConfigSize = 1 << 20

// Config holds defaults for a flatten run. Zero fields mean "not set":
// the CLI falls back to library defaults and lets flags override both.
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Render    RenderConfig    `yaml:"render"`
	Watermark WatermarkConfig `yaml:"watermark"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // output directory (empty = ./flatten-output)
	Format string `yaml:"format"` // "pdf", "png", "jpeg"
}

// RenderConfig defines rasterization options.
type RenderConfig struct {
	DPI         int `yaml:"dpi"`         // rendering resolution
	JPEGQuality int `yaml:"jpegQuality"` // 1..100
}

// WatermarkConfig defines watermark options.
type WatermarkConfig struct {
	Text           string  `yaml:"text"`
	SizePct        float64 `yaml:"sizePct"`        // font size as % of page width
	Opacity        int     `yaml:"opacity"`        // 0..255
	TilePaddingPct float64 `yaml:"tilePaddingPct"` // tile spacing as % of font size
	Tiled          *bool   `yaml:"tiled"`          // nil = keep default (tiled)
	Rotate45       bool    `yaml:"rotate45"`
}

// Load reads and parses the config file at path.
// Unknown fields are rejected to catch typos early.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if info.Size() > MaxConfigSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, info.Size(), MaxConfigSize)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied config path
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigNotFound, path, err)
	}

	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &cfg, nil
}
