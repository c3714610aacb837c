package services_test

import (
	"context"
	"testing"

	"hardsub/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStage(ctx, "ocr")
	ctx = services.WithVideo(ctx, "/videos/ep01.mkv")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "ocr" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if video, ok := services.VideoFromContext(ctx); !ok || video != "/videos/ep01.mkv" {
		t.Fatalf("unexpected video: %v %v", video, ok)
	}
}

func TestBlankValuesKeepOuterTags(t *testing.T) {
	ctx := services.WithStage(context.Background(), "extract")
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "extract" {
		t.Fatalf("blank stage should keep the outer one, got %q %v", stage, ok)
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.VideoFromContext(ctx); ok {
		t.Fatal("expected no video value")
	}
}
