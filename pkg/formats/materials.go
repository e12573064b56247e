package formats

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Faultbox/meshforge/pkg/lineio"
	"github.com/Faultbox/meshforge/pkg/model"
)

// MaterialParser appends the materials of one library file to materials.
// Texture maps are acquired from src, which may be nil.
type MaterialParser func(path string, src TextureSource, materials *[]model.Material) error

// Registry maps lower-case file extensions to material parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]MaterialParser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]MaterialParser)}
}

// DefaultRegistry creates a registry with the MTL parser registered.
func DefaultRegistry(opts lineio.Options) *Registry {
	r := NewRegistry()
	_ = r.Register(".mtl", NewMTLParser(opts))
	return r
}

// Register adds a parser for ext (with or without the leading dot).
// Each extension maps to at most one parser.
func (r *Registry) Register(ext string, parser MaterialParser) error {
	ext = normalizeExt(ext)
	if ext == "." || parser == nil {
		return fmt.Errorf("invalid material parser registration for %q", ext)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.parsers[ext]; exists {
		return fmt.Errorf("material parser for %s already registered", ext)
	}
	r.parsers[ext] = parser
	return nil
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Import dispatches path to the parser registered for its extension.
func (r *Registry) Import(path string, src TextureSource, materials *[]model.Material) error {
	r.mu.RLock()
	parser, ok := r.parsers[normalizeExt(filepath.Ext(path))]
	r.mu.RUnlock()
	if !ok {
		return &UnsupportedFormatError{Path: path}
	}
	return parser(path, src, materials)
}

// ImportMaterials loads a material library through the options' registry
// and texture source.
func ImportMaterials(path string, opts ImportOptions, materials *[]model.Material) error {
	return opts.registry().Import(path, opts.Textures, materials)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
