package config

import "path/filepath"

const (
	defaultConfigPath        = "~/.config/hardsub/config.toml"
	defaultSampleFPS         = 3.0
	defaultChangeThreshold   = 0.18
	defaultHoldGap           = 0.25
	defaultFillGaps          = 2.0
	defaultProgressEvery     = 5
	defaultOCREngine         = "paddle"
	defaultOCRCommand        = "paddleocr-json"
	defaultTesseractCommand  = "tesseract"
	defaultOCRLanguage       = "ch"
	defaultOCRTimeoutSeconds = 60
	defaultTextConvert       = "s2t"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: filepath.Join(defaultCacheDir(), "frames"),
			CacheDir:   defaultCacheDir(),
		},
		Pipeline: Pipeline{
			SampleFPS:       defaultSampleFPS,
			ChangeThreshold: defaultChangeThreshold,
			HoldGap:         defaultHoldGap,
			FillGaps:        defaultFillGaps,
			ProgressEvery:   defaultProgressEvery,
		},
		OCR: OCR{
			Engine:         defaultOCREngine,
			Command:        defaultOCRCommand,
			Language:       defaultOCRLanguage,
			TimeoutSeconds: defaultOCRTimeoutSeconds,
			CacheEnabled:   true,
		},
		Text: Text{
			Convert: defaultTextConvert,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
