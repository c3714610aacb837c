package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hardsub/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_Unset(t *testing.T) {
	if result := CheckDirectoryAccess("test", " "); result.Passed || result.Detail != "not configured" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckRecognitionCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recognition.db")
	result := CheckRecognitionCache(context.Background(), path)
	if !result.Passed {
		t.Fatalf("expected fresh cache to pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "0 entries") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}

	bad := filepath.Join(t.TempDir(), "bad.db")
	if err := os.WriteFile(bad, []byte("definitely not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckRecognitionCache(context.Background(), bad); result.Passed {
		t.Fatal("expected corrupt cache to fail")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected scratch, cache, log and cache db checks, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}

	cfg.OCR.CacheEnabled = false
	cfg.Paths.LogDir = ""
	cfg.Paths.ScratchDir = filepath.Join(testsupport.BaseDir(cfg), "missing")
	results = RunAll(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("expected two directory checks, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 1 || failed[0].Name != "Scratch directory" {
		t.Fatalf("expected scratch failure, got %+v", failed)
	}
}
