package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DragMode != "ray-plane" {
		t.Fatalf("drag mode: got %q want ray-plane", cfg.DragMode)
	}
	if cfg.DragSensitivity != 0.01 || cfg.CameraFOV != 75 || cfg.CameraZ != 5 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.CameraNear != 0.1 || cfg.CameraFar != 1000 {
		t.Fatalf("clip planes: got %v..%v", cfg.CameraNear, cfg.CameraFar)
	}
	if !cfg.ModelRecenter || cfg.MaxModelBytes != 64<<20 {
		t.Fatalf("model defaults: recenter=%v max=%d", cfg.ModelRecenter, cfg.MaxModelBytes)
	}
	if cfg.ExportPath != "boundingBox.json" {
		t.Fatalf("export path: got %q", cfg.ExportPath)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Fatalf("level: got %v", cfg.Level())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OVERLAY_DRAG_MODE", "screen-delta")
	t.Setenv("OVERLAY_CAMERA", "orthographic")
	t.Setenv("OVERLAY_CAMERA_FOV", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("level: got %v", cfg.Level())
	}
	if cfg.DragMode != "screen-delta" || cfg.CameraMode != "orthographic" || cfg.CameraFOV != 50 {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LOG_LEVEL", "loud"},
		{"OVERLAY_CAMERA_FOV", "180"},
		{"OVERLAY_CAMERA_NEAR", "0"},
		{"OVERLAY_DRAG_SENSITIVITY", "-1"},
		{"OVERLAY_MAX_MODEL_BYTES", "not-a-number"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
