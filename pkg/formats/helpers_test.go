package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/meshforge/pkg/texture"
)

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// observedLogger returns a logger that records warnings.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

type textureRequest struct {
	path string
	srgb bool
}

// fakeTextures is a TextureSource backed by an ImageCreator.
type fakeTextures struct {
	creator  *texture.ImageCreator
	requests []textureRequest
	fail     error
}

func newFakeTextures() *fakeTextures {
	return &fakeTextures{creator: texture.NewImageCreator()}
}

func (f *fakeTextures) Texture(path string, srgb bool) (*texture.Ref, error) {
	f.requests = append(f.requests, textureRequest{path, srgb})
	if f.fail != nil {
		return nil, f.fail
	}
	h, err := f.creator.CreateTexture(texture.Desc{
		Width: 1, Height: 1, Format: texture.FormatR8G8B8A8UNorm, Stride: 4,
	}, make([]byte, 4))
	if err != nil {
		return nil, err
	}
	return texture.NewRef(path, h), nil
}

// countingCreator records calls and optionally fails.
type countingCreator struct {
	inner *texture.ImageCreator
	calls int
	last  texture.Desc
	err   error
}

func newCountingCreator() *countingCreator {
	return &countingCreator{inner: texture.NewImageCreator()}
}

func (c *countingCreator) CreateTexture(desc texture.Desc, pixels []byte) (texture.Handle, error) {
	c.calls++
	c.last = desc
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.CreateTexture(desc, pixels)
}

var errDeviceLost = errors.New("device lost")
