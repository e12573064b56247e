// Package formats reads and writes the engine's asset formats: MSH meshes,
// MDL models, Wavefront OBJ/MTL sources and sprite fonts.
package formats

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/lineio"
	"github.com/Faultbox/meshforge/pkg/mesh"
	"github.com/Faultbox/meshforge/pkg/texture"
)

// TextureSource hands out shared texture references for material maps.
// The returned Ref is owned by the caller, who must Release it.
type TextureSource interface {
	Texture(path string, srgb bool) (*texture.Ref, error)
}

// ImportOptions configures the model readers.
type ImportOptions struct {
	Descriptor mesh.Descriptor
	// Order is the byte order of MSH data; nil means big-endian.
	Order binary.ByteOrder
	// Materials resolves material libraries; nil uses DefaultRegistry.
	Materials *Registry
	// Textures loads material maps; nil leaves texture slots empty.
	Textures TextureSource
	Encoding string
	Strict   bool
	Logger   *zap.Logger
}

// DefaultImportOptions returns options using the engine's conventions.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		Descriptor: mesh.DefaultDescriptor(),
		Order:      binary.BigEndian,
	}
}

func (o ImportOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o ImportOptions) order() binary.ByteOrder {
	if o.Order == nil {
		return binary.BigEndian
	}
	return o.Order
}

func (o ImportOptions) registry() *Registry {
	if o.Materials == nil {
		return DefaultRegistry(o.lineOptions())
	}
	return o.Materials
}

func (o ImportOptions) lineOptions() lineio.Options {
	return lineio.Options{
		Encoding: o.Encoding,
		Strict:   o.Strict,
		Logger:   o.logger(),
	}
}

// ResolveSibling returns name resolved against the directory of base.
// Absolute names are returned unchanged.
func ResolveSibling(base, name string) string {
	name = filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(base), name)
}

// ReplaceExt swaps the extension of path.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func writeTextFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: creating directory for %s: %v", ErrIO, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}
	return nil
}
