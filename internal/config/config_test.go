package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"hardsub/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCache := filepath.Join(tempHome, ".cache", "hardsub")
	if cfg.Paths.CacheDir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCache)
	}
	if cfg.Paths.ScratchDir != filepath.Join(wantCache, "frames") {
		t.Fatalf("unexpected scratch dir: %q", cfg.Paths.ScratchDir)
	}
	if cfg.Pipeline.SampleFPS != 3.0 || cfg.Pipeline.ChangeThreshold != 0.18 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.HoldGap != 0.25 || cfg.Pipeline.FillGaps != 2.0 {
		t.Fatalf("unexpected gap defaults: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.ProgressEvery != 5 {
		t.Fatalf("unexpected progress cadence: %d", cfg.Pipeline.ProgressEvery)
	}
	if cfg.OCR.Engine != "paddle" || cfg.OCR.Command != "paddleocr-json" {
		t.Fatalf("unexpected ocr defaults: %+v", cfg.OCR)
	}
	if !cfg.OCR.CacheEnabled {
		t.Fatal("expected recognition cache enabled by default")
	}
	if cfg.Text.Convert != "s2t" {
		t.Fatalf("unexpected convert profile: %q", cfg.Text.Convert)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected binaries: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if !cfg.ROI.Empty() {
		t.Fatalf("expected empty default ROI, got %+v", cfg.ROI)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ScratchDir, cfg.Paths.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	configPath := filepath.Join(t.TempDir(), "hardsub.toml")

	type payload struct {
		Pipeline struct {
			SampleFPS       float64 `toml:"sample_fps"`
			ChangeThreshold float64 `toml:"change_threshold"`
		} `toml:"pipeline"`
		ROI struct {
			X      int `toml:"x"`
			Y      int `toml:"y"`
			Width  int `toml:"width"`
			Height int `toml:"height"`
		} `toml:"roi"`
		OCR struct {
			Engine string `toml:"engine"`
		} `toml:"ocr"`
		Text struct {
			Convert string `toml:"convert"`
		} `toml:"text"`
	}
	custom := payload{}
	custom.Pipeline.SampleFPS = 5
	custom.Pipeline.ChangeThreshold = 0.3
	custom.ROI.X, custom.ROI.Y, custom.ROI.Width, custom.ROI.Height = 10, 900, 1900, 160
	custom.OCR.Engine = "Tesseract"
	custom.Text.Convert = "NONE"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Pipeline.SampleFPS != 5 || cfg.Pipeline.ChangeThreshold != 0.3 {
		t.Fatalf("expected pipeline overrides, got %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.HoldGap != 0.25 {
		t.Fatalf("expected default hold gap to survive partial file, got %v", cfg.Pipeline.HoldGap)
	}
	if cfg.ROI.Width != 1900 || cfg.ROI.Y != 900 {
		t.Fatalf("unexpected roi: %+v", cfg.ROI)
	}
	if cfg.OCR.Engine != "tesseract" {
		t.Fatalf("expected engine to be lowercased, got %q", cfg.OCR.Engine)
	}
	if cfg.Text.Convert != "" {
		t.Fatalf("expected none to disable conversion, got %q", cfg.Text.Convert)
	}
}

func TestLoadRejectsInvalidPipelineValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"zero fps", "[pipeline]\nsample_fps = 0\n", "sample_fps"},
		{"threshold above one", "[pipeline]\nchange_threshold = 1.5\n", "change_threshold"},
		{"negative hold", "[pipeline]\nhold_gap = -1\n", "hold_gap"},
		{"negative fill", "[pipeline]\nfill_gaps = -0.5\n", "fill_gaps"},
		{"negative roi", "[roi]\nwidth = -4\n", "roi"},
		{"unknown engine", "[ocr]\nengine = \"easyocr\"\n", "ocr.engine"},
		{"unknown log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestEnvironmentOverridesCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("HARDSUB_OCR_COMMAND", "/opt/ocr/run")
	t.Setenv("HARDSUB_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OCR.Command != "/opt/ocr/run" {
		t.Fatalf("expected env ocr command, got %q", cfg.OCR.Command)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected env ffmpeg, got %q", cfg.FFmpegBinary())
	}
}

func TestDotEnvFileIsApplied(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HARDSUB_FFPROBE", "")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HARDSUB_FFPROBE=/env/ffprobe\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	os.Unsetenv("HARDSUB_FFPROBE")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFprobeBinary() != "/env/ffprobe" {
		t.Fatalf("expected .env ffprobe, got %q", cfg.FFprobeBinary())
	}
}

func TestSaveRoundTripsROI(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := config.Default()
	cfg.ROI = config.ROI{X: 12, Y: 34, Width: 560, Height: 78}
	cfg.Pipeline.SampleFPS = 4
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected saved file to exist")
	}
	if loaded.ROI != cfg.ROI {
		t.Fatalf("roi mismatch: got %+v want %+v", loaded.ROI, cfg.ROI)
	}
	if loaded.Pipeline.SampleFPS != 4 {
		t.Fatalf("expected saved fps, got %v", loaded.Pipeline.SampleFPS)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "sample", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Pipeline.SampleFPS != 3.0 {
		t.Fatalf("unexpected sample fps: %v", cfg.Pipeline.SampleFPS)
	}
}
