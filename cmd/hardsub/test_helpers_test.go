package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"hardsub/internal/config"
	"hardsub/internal/media"
	"hardsub/internal/ocr"
	"hardsub/internal/testsupport"
)

const (
	testFrameW = 64
	testFrameH = 36
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	video      string
	decoder    *fakeDecoder
	engine     *fakeEngine
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Chdir(base)

	configPath := filepath.Join(base, "config.toml")
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("write config: %v", err)
	}

	video := filepath.Join(base, "media", "episode.mkv")
	testsupport.WriteFile(t, video, 32)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		video:      video,
		decoder:    &fakeDecoder{t: t, readings: helloWorld()},
		engine:     &fakeEngine{readings: helloWorld()},
	}

	prevDecoder, prevEngine := newDecoder, newEngine
	newDecoder = func(*config.Config) media.Decoder { return env.decoder }
	newEngine = func(*config.Config) (ocr.Engine, error) { return env.engine, nil }
	t.Cleanup(func() {
		newDecoder, newEngine = prevDecoder, prevEngine
	})
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func helloWorld() []string {
	return []string{"Hello", "Hello", "Hello", "Hello", "", "World", "World", "World", "World", "World"}
}

// fakeDecoder fills frame i with red value i; fakeEngine maps that back to
// readings[i].
type fakeDecoder struct {
	t        testing.TB
	readings []string
}

func (d *fakeDecoder) Probe(context.Context, string) (media.VideoInfo, error) {
	return media.VideoInfo{
		Width:     testFrameW,
		Height:    testFrameH,
		Duration:  float64(len(d.readings)) / 2,
		FrameRate: 23.976,
		Codec:     "h264",
		SizeBytes: 3 << 20,
		BitRate:   4_500_000,
	}, nil
}

func (d *fakeDecoder) SampleFrames(_ context.Context, _ string, _ float64, dir string) error {
	for i := range d.readings {
		path := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i+1))
		testsupport.WritePNG(d.t, path, testsupport.NewFrame(testFrameW, testFrameH, color.RGBA{R: uint8(i), A: 255}))
	}
	return nil
}

func (d *fakeDecoder) ExtractFrame(_ context.Context, _ string, _ float64, dest string) error {
	testsupport.WritePNG(d.t, dest, testsupport.NewFrame(testFrameW, testFrameH, color.RGBA{R: 1, A: 255}))
	return nil
}

type fakeEngine struct {
	mu       sync.Mutex
	readings []string
	calls    int
}

func (e *fakeEngine) Recognize(_ context.Context, img image.Image) ([]ocr.Candidate, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	text := e.readings[int(r>>8)]
	if text == "" {
		return nil, nil
	}
	return []ocr.Candidate{{
		Box:  []ocr.Point{{X: 10, Y: 2}, {X: 50, Y: 2}, {X: 50, Y: 10}, {X: 10, Y: 10}},
		Text: text,
	}}, nil
}

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
