package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogLevel        string  `envconfig:"LOG_LEVEL" default:"info"`
	DragMode        string  `envconfig:"OVERLAY_DRAG_MODE" default:"ray-plane"`
	DragSensitivity float64 `envconfig:"OVERLAY_DRAG_SENSITIVITY" default:"0.01"`
	CameraMode      string  `envconfig:"OVERLAY_CAMERA" default:"perspective"`
	CameraFOV       float64 `envconfig:"OVERLAY_CAMERA_FOV" default:"75"`
	CameraZ         float64 `envconfig:"OVERLAY_CAMERA_Z" default:"5"`
	CameraNear      float64 `envconfig:"OVERLAY_CAMERA_NEAR" default:"0.1"`
	CameraFar       float64 `envconfig:"OVERLAY_CAMERA_FAR" default:"1000"`
	OrthoHalfHeight float64 `envconfig:"OVERLAY_ORTHO_HALF_HEIGHT" default:"5"`
	ModelRecenter   bool    `envconfig:"OVERLAY_MODEL_RECENTER" default:"true"`
	MaxModelBytes   int64   `envconfig:"OVERLAY_MAX_MODEL_BYTES" default:"67108864"`
	ExportPath      string  `envconfig:"OVERLAY_EXPORT_PATH" default:"boundingBox.json"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that envconfig cannot express.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.DragSensitivity <= 0 {
		return fmt.Errorf("OVERLAY_DRAG_SENSITIVITY must be positive, got %v", c.DragSensitivity)
	}
	if c.CameraFOV <= 0 || c.CameraFOV >= 180 {
		return fmt.Errorf("OVERLAY_CAMERA_FOV must be in (0, 180), got %v", c.CameraFOV)
	}
	if c.CameraNear <= 0 || c.CameraFar <= c.CameraNear {
		return fmt.Errorf("camera clip planes invalid: near %v far %v", c.CameraNear, c.CameraFar)
	}
	if c.OrthoHalfHeight <= 0 {
		return fmt.Errorf("OVERLAY_ORTHO_HALF_HEIGHT must be positive, got %v", c.OrthoHalfHeight)
	}
	if c.MaxModelBytes <= 0 {
		return fmt.Errorf("OVERLAY_MAX_MODEL_BYTES must be positive, got %d", c.MaxModelBytes)
	}
	if strings.TrimSpace(c.ExportPath) == "" {
		return fmt.Errorf("OVERLAY_EXPORT_PATH must not be empty")
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: unknown level %q", s)
}
