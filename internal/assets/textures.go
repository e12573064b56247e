package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/formats"
	"github.com/Faultbox/meshforge/pkg/texture"
)

// TextureCache decodes image files, uploads them through a Creator and
// shares the result. The cache keeps one reference per entry; every caller
// of Texture receives its own.
type TextureCache struct {
	creator   texture.Creator
	forceSRGB bool
	log       *zap.Logger

	mu    sync.Mutex // serializes loads so each file is uploaded once
	cache *Cache[*texture.Ref]
}

var _ formats.TextureSource = (*TextureCache)(nil)

// NewTextureCache creates a texture cache. forceSRGB marks every texture as
// sRGB regardless of the requesting slot.
func NewTextureCache(creator texture.Creator, forceSRGB bool, log *zap.Logger) *TextureCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &TextureCache{
		creator:   creator,
		forceSRGB: forceSRGB,
		log:       log,
		cache: NewCache(func(key string, ref *texture.Ref) {
			ref.Release()
		}),
	}
}

func textureKey(path string, srgb bool) string {
	if srgb {
		return path + "#srgb"
	}
	return path
}

// Texture implements formats.TextureSource.
func (c *TextureCache) Texture(path string, srgb bool) (*texture.Ref, error) {
	path = filepath.Clean(path)
	srgb = srgb || c.forceSRGB
	key := textureKey(path, srgb)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ref, ok := c.cache.Get(key); ok {
		return ref.Retain(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", formats.ErrIO, err)
	}
	img, err := texture.Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", formats.ErrParse, err)
	}
	h, err := texture.Upload(c.creator, img, srgb)
	if err != nil {
		return nil, &formats.ResourceCreationError{Path: path, Err: err}
	}

	ref := texture.NewRef(path, h)
	c.cache.Set(key, ref)
	c.log.Debug("texture loaded",
		zap.String("path", path),
		zap.Bool("srgb", srgb),
		zap.Stringer("format", h.Desc().Format),
		zap.String("id", h.ID()))
	return ref.Retain(), nil
}

// Evict drops the cache's references to path. Materials that still hold the
// texture keep it alive.
func (c *TextureCache) Evict(path string) bool {
	path = filepath.Clean(path)
	linear := c.cache.Delete(textureKey(path, false))
	srgb := c.cache.Delete(textureKey(path, true))
	return linear || srgb
}

// Clear drops every cached reference.
func (c *TextureCache) Clear() {
	c.cache.Clear()
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache hits and misses.
func (c *TextureCache) Stats() (hits, misses int) {
	return c.cache.Stats()
}
