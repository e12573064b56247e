// Package config handles meshforge configuration loading and management.
package config

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Faultbox/meshforge/pkg/mesh"
)

// Config holds all importer settings.
type Config struct {
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Import   ImportConfig   `yaml:"import" toml:"import"`
	Textures TexturesConfig `yaml:"textures" toml:"textures"`
	Fonts    FontsConfig    `yaml:"fonts" toml:"fonts"`
	GPU      GPUConfig      `yaml:"gpu" toml:"gpu"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// AssetsConfig locates asset files.
type AssetsConfig struct {
	Root  string `yaml:"root" toml:"root"`   // Relative asset paths resolve here
	Watch bool   `yaml:"watch" toml:"watch"` // Evict cached assets on change
}

// ImportConfig controls the model and mesh readers.
type ImportConfig struct {
	Descriptor mesh.Descriptor `yaml:"descriptor" toml:"descriptor"`
	ByteOrder  string          `yaml:"byte_order" toml:"byte_order"` // "big" or "little"
	Strict     bool            `yaml:"strict" toml:"strict"`         // Unknown keywords are fatal
	Encoding   string          `yaml:"encoding" toml:"encoding"`     // Source text encoding
}

// TexturesConfig controls material texture loading.
type TexturesConfig struct {
	// ForceSRGB treats every material map as sRGB, not just base color.
	ForceSRGB bool `yaml:"force_srgb" toml:"force_srgb"`
}

// FontsConfig controls sprite font loading.
type FontsConfig struct {
	ForceSRGB bool   `yaml:"force_srgb" toml:"force_srgb"`
	ByteOrder string `yaml:"byte_order" toml:"byte_order"`
}

// GPUConfig configures the hidden OpenGL context used for uploads.
type GPUConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
	GLMajor int  `yaml:"gl_major" toml:"gl_major"`
	GLMinor int  `yaml:"gl_minor" toml:"gl_minor"`
	DebugGL bool `yaml:"debug_gl" toml:"debug_gl"`
	Width   int  `yaml:"width" toml:"width"`
	Height  int  `yaml:"height" toml:"height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			Root: ".",
		},
		Import: ImportConfig{
			Descriptor: mesh.DefaultDescriptor(),
			ByteOrder:  "big",
			Encoding:   "utf-8",
		},
		Fonts: FontsConfig{
			ByteOrder: "big",
		},
		GPU: GPUConfig{
			GLMajor: 4,
			GLMinor: 1,
			Width:   64,
			Height:  64,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that cannot be expressed by types alone.
func (c *Config) Validate() error {
	if err := c.Import.Descriptor.Validate(); err != nil {
		return fmt.Errorf("import.descriptor: %w", err)
	}
	if _, err := ParseByteOrder(c.Import.ByteOrder); err != nil {
		return fmt.Errorf("import.byte_order: %w", err)
	}
	if _, err := ParseByteOrder(c.Fonts.ByteOrder); err != nil {
		return fmt.Errorf("fonts.byte_order: %w", err)
	}
	if c.GPU.GLMajor < 3 {
		return fmt.Errorf("gpu.gl_major: OpenGL %d.%d has no core profile", c.GPU.GLMajor, c.GPU.GLMinor)
	}
	return nil
}

// ParseByteOrder maps "big"/"little" (or empty, meaning big) to a byte order.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(name) {
	case "", "big", "big-endian", "be":
		return binary.BigEndian, nil
	case "little", "little-endian", "le":
		return binary.LittleEndian, nil
	}
	return nil, fmt.Errorf("unknown byte order %q", name)
}
