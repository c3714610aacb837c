package ocrcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync/atomic"

	"hardsub/internal/logging"
	"hardsub/internal/ocr"
)

// Engine wraps an ocr.Engine with a Store. Cache failures are logged and
// fall through to the wrapped engine; they never fail recognition.
type Engine struct {
	inner  ocr.Engine
	store  *Store
	key    string
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Wrap decorates inner. key must change whenever inner would produce
// different output for the same image; engines implementing ocr.Keyer
// supply it via KeyOf.
func Wrap(inner ocr.Engine, store *Store, key string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{inner: inner, store: store, key: key, logger: logger}
}

// KeyOf returns the engine's cache key, or its dynamic type name when it
// does not implement ocr.Keyer.
func KeyOf(engine ocr.Engine) string {
	if keyer, ok := engine.(ocr.Keyer); ok {
		return keyer.Key()
	}
	return fmt.Sprintf("%T", engine)
}

// Recognize serves cached candidates for identical crops and records fresh
// results otherwise.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]ocr.Candidate, error) {
	if e.store == nil {
		return e.inner.Recognize(ctx, img)
	}
	hash, err := HashImage(img)
	if err != nil {
		e.warn("hash crop", err)
		return e.inner.Recognize(ctx, img)
	}

	cands, ok, err := e.store.Lookup(ctx, hash, e.key)
	if err != nil {
		e.warn("lookup", err)
	}
	if ok {
		e.hits.Add(1)
		return cands, nil
	}

	e.misses.Add(1)
	cands, err = e.inner.Recognize(ctx, img)
	if err != nil {
		return nil, err
	}
	if err := e.store.Put(ctx, hash, e.key, cands); err != nil {
		e.warn("store", err)
	}
	return cands, nil
}

// Counts returns the hits and misses served by this wrapper.
func (e *Engine) Counts() (hits, misses int64) {
	return e.hits.Load(), e.misses.Load()
}

func (e *Engine) warn(op string, err error) {
	logging.WarnWithContext(e.logger, "recognition cache unavailable", "ocr_cache_error",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "run 'hardsub cache clear' if this persists"),
		logging.String(logging.FieldImpact, "frame recognized without cache"),
	)
}

// HashImage returns the hex SHA-256 of img's PNG encoding.
func HashImage(img image.Image) (string, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode crop: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
