package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateROI(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePipeline() error {
	p := c.Pipeline
	if math.IsNaN(p.SampleFPS) || math.IsInf(p.SampleFPS, 0) || p.SampleFPS <= 0 {
		return fmt.Errorf("pipeline.sample_fps must be a positive number, got %v", p.SampleFPS)
	}
	if math.IsNaN(p.ChangeThreshold) || p.ChangeThreshold < 0 || p.ChangeThreshold > 1 {
		return fmt.Errorf("pipeline.change_threshold must be between 0 and 1, got %v", p.ChangeThreshold)
	}
	if math.IsNaN(p.HoldGap) || p.HoldGap < 0 {
		return fmt.Errorf("pipeline.hold_gap must be >= 0, got %v", p.HoldGap)
	}
	if math.IsNaN(p.FillGaps) || p.FillGaps < 0 {
		return fmt.Errorf("pipeline.fill_gaps must be >= 0, got %v", p.FillGaps)
	}
	return nil
}

func (c *Config) validateROI() error {
	if c.ROI.Width < 0 || c.ROI.Height < 0 {
		return errors.New("roi.width and roi.height must be >= 0")
	}
	return nil
}

func (c *Config) validateOCR() error {
	switch c.OCR.Engine {
	case "paddle", "tesseract":
	default:
		return fmt.Errorf("ocr.engine must be \"paddle\" or \"tesseract\", got %q", c.OCR.Engine)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
