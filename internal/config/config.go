// Package config loads scanner settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the binaries expose.
type Config struct {
	// Rectification target
	TargetWidth  int
	TargetHeight int

	// Detection
	BlurKernel       int
	CannyLow         float64
	CannyHigh        float64
	MaxDetectDim     int
	MinAreaFraction  float64
	MinContourPixels int

	// Enhancement: "sharpen", "threshold", "both" or "none"
	EnhanceMode string

	// OCR
	OCRLanguage    string
	TessdataPrefix string
	// SkipBlankPages skips OCR on pages without text-like regions.
	SkipBlankPages bool

	// Concurrency
	Workers int

	// Logging: "debug", "info", "warn" or "error"
	LogLevel string

	// HTTP transport
	HTTPAddr       string
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// Load reads a .env file when one is present and then the environment.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv builds a Config from the environment and validates it.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		TargetWidth:      getIntEnv("DOCSCAN_TARGET_WIDTH", 800),
		TargetHeight:     getIntEnv("DOCSCAN_TARGET_HEIGHT", 1000),
		BlurKernel:       getIntEnv("DOCSCAN_BLUR_KERNEL", 5),
		CannyLow:         getFloatEnv("DOCSCAN_CANNY_LOW", 75),
		CannyHigh:        getFloatEnv("DOCSCAN_CANNY_HIGH", 200),
		MaxDetectDim:     getIntEnv("DOCSCAN_MAX_DETECT_DIM", 1000),
		MinAreaFraction:  getFloatEnv("DOCSCAN_MIN_AREA_FRACTION", 0),
		MinContourPixels: getIntEnv("DOCSCAN_MIN_CONTOUR_PIXELS", 10),
		EnhanceMode:      strings.ToLower(getEnv("DOCSCAN_ENHANCE_MODE", "sharpen")),
		OCRLanguage:      getEnv("DOCSCAN_OCR_LANGUAGE", "por"),
		TessdataPrefix:   getEnv("DOCSCAN_TESSDATA_PREFIX", ""),
		SkipBlankPages:   getBoolEnv("DOCSCAN_SKIP_BLANK_PAGES", false),
		Workers:          getIntEnv("DOCSCAN_WORKERS", 0),
		LogLevel:         strings.ToLower(getEnv("DOCSCAN_LOG_LEVEL", "info")),
		HTTPAddr:         getEnv("DOCSCAN_HTTP_ADDR", ":8080"),
		RequestTimeout:   getDurationEnv("DOCSCAN_REQUEST_TIMEOUT", 60*time.Second),
		MaxUploadBytes:   int64(getIntEnv("DOCSCAN_MAX_UPLOAD_BYTES", 20<<20)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.TargetWidth <= 0 || c.TargetHeight <= 0 {
		return fmt.Errorf("target size must be positive (got %dx%d)", c.TargetWidth, c.TargetHeight)
	}
	if c.BlurKernel < 1 {
		return fmt.Errorf("DOCSCAN_BLUR_KERNEL must be >= 1 (got %d)", c.BlurKernel)
	}
	if c.CannyLow < 0 || c.CannyHigh < 0 {
		return fmt.Errorf("canny thresholds must be >= 0 (got %g/%g)", c.CannyLow, c.CannyHigh)
	}
	if c.MaxDetectDim < 0 {
		return fmt.Errorf("DOCSCAN_MAX_DETECT_DIM must be >= 0 (got %d)", c.MaxDetectDim)
	}
	if c.MinAreaFraction < 0 || c.MinAreaFraction >= 1 {
		return fmt.Errorf("DOCSCAN_MIN_AREA_FRACTION must be in [0,1) (got %g)", c.MinAreaFraction)
	}
	switch c.EnhanceMode {
	case "sharpen", "threshold", "both", "none":
	default:
		return fmt.Errorf("invalid DOCSCAN_ENHANCE_MODE: %q", c.EnhanceMode)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid DOCSCAN_LOG_LEVEL: %q", c.LogLevel)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("DOCSCAN_MAX_UPLOAD_BYTES must be > 0 (got %d)", c.MaxUploadBytes)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("DOCSCAN_REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
