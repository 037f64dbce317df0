package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/recera/seurat/pkg/view"
)

// Config represents the seurat.json configuration
type Config struct {
	// Path to the call graph snapshot loaded on startup
	Graph string `json:"graph,omitempty"`

	// Force simulation tuning
	Physics *PhysicsConfig `json:"physics,omitempty"`

	// Drawing surface configuration
	Canvas *CanvasConfig `json:"canvas,omitempty"`

	// Live server configuration
	Serve *ServeConfig `json:"serve,omitempty"`
}

// PhysicsConfig tunes the force simulation
type PhysicsConfig struct {
	// Resting distance between linked nodes
	LinkDistance float64 `json:"linkDistance,omitempty"`

	// Many-body strength; negative values repel
	ChargeStrength float64 `json:"chargeStrength,omitempty"`

	// Radius of the collision circle around each node
	CollisionRadius float64 `json:"collisionRadius,omitempty"`
}

// CanvasConfig controls the drawing surface
type CanvasConfig struct {
	// Canvas dimensions in pixels
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Zoom scale extent
	ZoomMin float64 `json:"zoomMin,omitempty"`
	ZoomMax float64 `json:"zoomMax,omitempty"`
}

// ServeConfig contains live server settings
type ServeConfig struct {
	// Port to serve on
	Port int `json:"port,omitempty"`

	// Host to bind to
	Host string `json:"host,omitempty"`

	// Whether to open a browser on startup
	Open bool `json:"open,omitempty"`
}

// Load loads configuration from seurat.json
func Load(projectPath string) (*Config, error) {
	// Try to find seurat.json
	configPath := filepath.Join(projectPath, "seurat.json")

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Return default config if no file exists
		return DefaultConfig(), nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Parse JSON
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	return &config, nil
}

// Save saves configuration to seurat.json
func Save(config *Config, projectPath string) error {
	configPath := filepath.Join(projectPath, "seurat.json")

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(configPath, data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Physics: &PhysicsConfig{
			LinkDistance:    100,
			ChargeStrength:  -300,
			CollisionRadius: 60,
		},
		Canvas: &CanvasConfig{
			Width:   960,
			Height:  600,
			ZoomMin: 0.1,
			ZoomMax: 10,
		},
		Serve: &ServeConfig{
			Port: 8649,
			Host: "localhost",
			Open: false,
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	// Apply physics defaults
	if config.Physics == nil {
		config.Physics = defaults.Physics
	} else {
		if config.Physics.LinkDistance == 0 {
			config.Physics.LinkDistance = defaults.Physics.LinkDistance
		}
		if config.Physics.ChargeStrength == 0 {
			config.Physics.ChargeStrength = defaults.Physics.ChargeStrength
		}
		if config.Physics.CollisionRadius == 0 {
			config.Physics.CollisionRadius = defaults.Physics.CollisionRadius
		}
	}

	// Apply canvas defaults
	if config.Canvas == nil {
		config.Canvas = defaults.Canvas
	} else {
		if config.Canvas.Width == 0 {
			config.Canvas.Width = defaults.Canvas.Width
		}
		if config.Canvas.Height == 0 {
			config.Canvas.Height = defaults.Canvas.Height
		}
		if config.Canvas.ZoomMin == 0 {
			config.Canvas.ZoomMin = defaults.Canvas.ZoomMin
		}
		if config.Canvas.ZoomMax == 0 {
			config.Canvas.ZoomMax = defaults.Canvas.ZoomMax
		}
	}

	// Apply server defaults
	if config.Serve == nil {
		config.Serve = defaults.Serve
	} else {
		if config.Serve.Port == 0 {
			config.Serve.Port = defaults.Serve.Port
		}
		if config.Serve.Host == "" {
			config.Serve.Host = defaults.Serve.Host
		}
	}
}

// ViewConfig converts the configuration into engine settings
func (c *Config) ViewConfig() view.Config {
	cfg := view.Config{}
	if c.Physics != nil {
		cfg.LinkDistance = c.Physics.LinkDistance
		cfg.ChargeStrength = c.Physics.ChargeStrength
		cfg.CollisionRadius = c.Physics.CollisionRadius
	}
	if c.Canvas != nil {
		cfg.Width = c.Canvas.Width
		cfg.Height = c.Canvas.Height
		cfg.ZoomMin = c.Canvas.ZoomMin
		cfg.ZoomMax = c.Canvas.ZoomMax
	}
	return cfg
}
