package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.TargetWidth != 800 || cfg.TargetHeight != 1000 {
		t.Errorf("target: got %dx%d, want 800x1000", cfg.TargetWidth, cfg.TargetHeight)
	}
	if cfg.CannyLow != 75 || cfg.CannyHigh != 200 {
		t.Errorf("canny: got %g/%g, want 75/200", cfg.CannyLow, cfg.CannyHigh)
	}
	if cfg.BlurKernel != 5 {
		t.Errorf("blur kernel: got %d, want 5", cfg.BlurKernel)
	}
	if cfg.EnhanceMode != "sharpen" {
		t.Errorf("enhance mode: got %s, want sharpen", cfg.EnhanceMode)
	}
	if cfg.OCRLanguage != "por" {
		t.Errorf("ocr language: got %s, want por", cfg.OCRLanguage)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("request timeout: got %s", cfg.RequestTimeout)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DOCSCAN_TARGET_WIDTH", "600")
	t.Setenv("DOCSCAN_TARGET_HEIGHT", " 900 ")
	t.Setenv("DOCSCAN_ENHANCE_MODE", "BOTH")
	t.Setenv("DOCSCAN_REQUEST_TIMEOUT", "5s")
	t.Setenv("DOCSCAN_SKIP_BLANK_PAGES", "true")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.TargetWidth != 600 || cfg.TargetHeight != 900 {
		t.Errorf("target: got %dx%d, want 600x900", cfg.TargetWidth, cfg.TargetHeight)
	}
	if cfg.EnhanceMode != "both" {
		t.Errorf("enhance mode: got %s, want both", cfg.EnhanceMode)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("request timeout: got %s, want 5s", cfg.RequestTimeout)
	}
	if !cfg.SkipBlankPages {
		t.Error("skip blank pages should be enabled")
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero width", "DOCSCAN_TARGET_WIDTH", "0"},
		{"negative height", "DOCSCAN_TARGET_HEIGHT", "-5"},
		{"zero kernel", "DOCSCAN_BLUR_KERNEL", "0"},
		{"unknown mode", "DOCSCAN_ENHANCE_MODE", "sparkle"},
		{"area fraction", "DOCSCAN_MIN_AREA_FRACTION", "1.5"},
		{"negative canny", "DOCSCAN_CANNY_LOW", "-1"},
		{"log level", "DOCSCAN_LOG_LEVEL", "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("LoadFromEnv should fail for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_UnparseableFallsBack(t *testing.T) {
	t.Setenv("DOCSCAN_CANNY_HIGH", "lots")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.CannyHigh != 200 {
		t.Errorf("unparseable value should fall back to default, got %g", cfg.CannyHigh)
	}
}
