// Package assets loads and caches models, fonts and textures for the
// meshforge tools.
package assets

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/internal/config"
	"github.com/Faultbox/meshforge/pkg/formats"
	"github.com/Faultbox/meshforge/pkg/model"
	"github.com/Faultbox/meshforge/pkg/texture"
)

// Manager resolves asset paths against a root directory and caches parsed
// results. Models and fonts it returns hold their own texture references:
// eviction and Close never invalidate them, and callers Release them when
// done. Geometry and glyph data are shared and read-only.
type Manager struct {
	root     string
	opts     formats.ImportOptions
	fontDesc formats.SpriteFontDescriptor
	log      *zap.Logger

	textures *TextureCache
	models   *Cache[*model.Output]
	fonts    *Cache[*formats.SpriteFontOutput]

	mu      sync.Mutex // serializes parsing and eviction
	watch   *watcher
	onEvict func(path string)
}

// NewManager creates a manager from cfg. creator receives every texture
// upload.
func NewManager(cfg *config.Config, creator texture.Creator, log *zap.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	importOrder, _ := config.ParseByteOrder(cfg.Import.ByteOrder)
	fontOrder, _ := config.ParseByteOrder(cfg.Fonts.ByteOrder)

	root, err := filepath.Abs(cfg.Assets.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving asset root %s: %w", cfg.Assets.Root, err)
	}

	m := &Manager{
		root:     root,
		fontDesc: formats.SpriteFontDescriptor{ForceSRGB: cfg.Fonts.ForceSRGB, Order: fontOrder},
		log:      log,
		textures: NewTextureCache(creator, cfg.Textures.ForceSRGB, log.Named("textures")),
		models: NewCache(func(_ string, out *model.Output) {
			out.Release()
		}),
		fonts: NewCache(func(_ string, f *formats.SpriteFontOutput) {
			f.Release()
		}),
	}
	m.opts = formats.ImportOptions{
		Descriptor: cfg.Import.Descriptor,
		Order:      importOrder,
		Textures:   m.textures,
		Encoding:   cfg.Import.Encoding,
		Strict:     cfg.Import.Strict,
		Logger:     log.Named("import"),
	}
	return m, nil
}

// Root returns the absolute asset root.
func (m *Manager) Root() string {
	return m.root
}

// Resolve maps path to a cleaned absolute path under the asset root.
func (m *Manager) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.root, path)
}

// ImportOptions returns the reader options the manager uses.
func (m *Manager) ImportOptions() formats.ImportOptions {
	return m.opts
}

// Textures returns the shared texture cache.
func (m *Manager) Textures() *TextureCache {
	return m.textures
}

// LoadModel reads an .mdl, .obj or .msh file, validates it and caches it.
// The caller owns the returned output and must Release it.
func (m *Manager) LoadModel(path string) (*model.Output, error) {
	key := m.Resolve(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	if out, ok := m.models.Get(key); ok {
		return out.Share(), nil
	}

	out := &model.Output{}
	var err error
	switch strings.ToLower(filepath.Ext(key)) {
	case ".mdl":
		err = formats.ReadMDLFile(key, out, m.opts)
	case ".obj":
		err = formats.ReadOBJFile(key, out, m.opts)
	case ".msh":
		err = m.readMesh(key, out)
	default:
		err = &formats.UnsupportedFormatError{Path: key}
	}
	if err == nil {
		err = out.Validate()
	}
	if err != nil {
		out.Release()
		return nil, err
	}

	m.models.Set(key, out)
	m.log.Info("model loaded",
		zap.String("path", key),
		zap.Int("vertices", len(out.Vertices)),
		zap.Int("indices", len(out.Indices)),
		zap.Int("parts", len(out.Parts)),
		zap.Int("materials", len(out.Materials)))
	return out.Share(), nil
}

// readMesh loads a bare mesh as a model with a single root part.
func (m *Manager) readMesh(path string, out *model.Output) error {
	if err := formats.ReadMSHFile(path, m.opts.Descriptor.Layout, m.opts.Order, &out.Vertices, &out.Indices); err != nil {
		return err
	}
	p := model.NewPart(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	p.IndexCount = uint32(len(out.Indices))
	out.Parts = append(out.Parts, p)
	return nil
}

// LoadMaterials imports a material library. Libraries are not cached; the
// caller releases the returned materials.
func (m *Manager) LoadMaterials(path string) ([]model.Material, error) {
	var mats []model.Material
	if err := formats.ImportMaterials(m.Resolve(path), m.opts, &mats); err != nil {
		return nil, err
	}
	return mats, nil
}

// LoadFont reads a .spritefont or .fnt font and caches it. The caller owns
// the returned font and must Release it.
func (m *Manager) LoadFont(path string) (*formats.SpriteFontOutput, error) {
	key := m.Resolve(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.fonts.Get(key); ok {
		return f.Share(), nil
	}

	f := &formats.SpriteFontOutput{}
	if err := formats.LoadFont(key, m.textures.creator, m.fontDesc, f); err != nil {
		return nil, err
	}

	m.fonts.Set(key, f)
	m.log.Info("font loaded",
		zap.String("path", key),
		zap.Int("glyphs", len(f.Glyphs)),
		zap.Float32("line_spacing", f.LineSpacing))
	return f.Share(), nil
}

// Evict drops cached entries derived from the file at path. Changing a
// mesh evicts the model of the same base name; changing a material library
// evicts every model.
func (m *Manager) Evict(path string) {
	key := m.Resolve(path)

	m.mu.Lock()
	evicted := m.models.Delete(key)
	evicted = m.fonts.Delete(key) || evicted

	switch strings.ToLower(filepath.Ext(key)) {
	case ".msh":
		evicted = m.models.Delete(formats.ReplaceExt(key, ".mdl")) || evicted
	case ".mtl":
		if m.models.Len() > 0 {
			m.models.Clear()
			evicted = true
		}
	default:
		evicted = m.textures.Evict(key) || evicted
	}

	onEvict := m.onEvict
	m.mu.Unlock()

	if evicted {
		m.log.Debug("evicted", zap.String("path", key))
		if onEvict != nil {
			onEvict(key)
		}
	}
}

// OnEvict registers fn to run after Evict removes a cached entry. fn
// receives the resolved path and may call back into the manager.
func (m *Manager) OnEvict(fn func(path string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Stats summarizes the caches.
type Stats struct {
	Models, Fonts, Textures    int
	ModelHits, ModelMisses     int
	TextureHits, TextureMisses int
}

// Stats returns cache sizes and hit counts.
func (m *Manager) Stats() Stats {
	s := Stats{
		Models:   m.models.Len(),
		Fonts:    m.fonts.Len(),
		Textures: m.textures.Len(),
	}
	s.ModelHits, s.ModelMisses = m.models.Stats()
	s.TextureHits, s.TextureMisses = m.textures.Stats()
	return s
}

// Close stops watching and releases every cached resource.
func (m *Manager) Close() {
	m.stopWatching()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.models.Clear()
	m.fonts.Clear()
	m.textures.Clear()
}
