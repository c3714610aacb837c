package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"hardsub/internal/config"
	"hardsub/internal/services"
)

// Option configures a command-backed engine.
type Option func(*runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithTempDir sets where crop images are written for the recognizer.
func WithTempDir(dir string) Option {
	return func(r *runner) {
		r.tempDir = strings.TrimSpace(dir)
	}
}

// WithTimeout bounds each recognizer invocation. Zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(r *runner) {
		r.timeout = timeout
	}
}

// runner holds what every command-backed engine shares: the binary, its
// fixed arguments, and how a crop reaches it.
type runner struct {
	command string
	args    []string
	tempDir string
	timeout time.Duration
	exec    Executor
}

func newRunner(command string, args []string, opts []Option) runner {
	r := runner{
		command: strings.TrimSpace(command),
		args:    append([]string(nil), args...),
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// run writes img to a temp PNG and executes the recognizer with buildArgs
// applied to the image path.
func (r runner) run(ctx context.Context, img image.Image, buildArgs func(imagePath string) []string) ([]byte, error) {
	path, cleanup, err := writeTempPNG(r.tempDir, img)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "ocr", "prepare image", "", err)
	}
	defer cleanup()

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	output, err := r.exec.Run(runCtx, r.command, buildArgs(path))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrExternalTool, "ocr", r.command, "recognizer failed", err)
	}
	return output, nil
}

// New builds the engine selected by cfg.Engine.
func New(cfg config.OCR, opts ...Option) (Engine, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ocr", "select engine", "ocr command not configured", nil)
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append([]Option{WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)}, opts...)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "", "paddle":
		return NewPaddleEngine(cfg.Command, cfg.Args, opts...), nil
	case "tesseract":
		return NewTesseractEngine(cfg.Command, cfg.Language, cfg.Args, opts...), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "ocr", "select engine", fmt.Sprintf("unknown engine %q", cfg.Engine), nil)
	}
}
