// Package mesh defines vertex records and the descriptors that select their
// binary layout and coordinate conventions.
package mesh

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout is returned for unsupported vertex/index layouts.
var ErrInvalidLayout = errors.New("invalid vertex layout")

// Vertex is a mesh vertex. Normal and UV are zero when the layout omits them.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// Layout selects which vertex attributes are stored and the index width.
type Layout struct {
	HasNormal  bool `yaml:"normal" toml:"normal"`
	HasTexture bool `yaml:"texture" toml:"texture"`
	// IndexSize is the index width in bytes: 2 or 4.
	IndexSize int `yaml:"index_size" toml:"index_size"`
}

// DefaultLayout stores position, normal and UV with 32-bit indices.
func DefaultLayout() Layout {
	return Layout{HasNormal: true, HasTexture: true, IndexSize: 4}
}

// VertexSize returns the size of one stored vertex in bytes.
func (l Layout) VertexSize() int {
	size := 12
	if l.HasNormal {
		size += 12
	}
	if l.HasTexture {
		size += 8
	}
	return size
}

// Validate checks the index width.
func (l Layout) Validate() error {
	if l.IndexSize != 2 && l.IndexSize != 4 {
		return fmt.Errorf("%w: index size %d (want 2 or 4)", ErrInvalidLayout, l.IndexSize)
	}
	return nil
}

// MaxIndex returns the largest index value the layout can store.
func (l Layout) MaxIndex() uint32 {
	if l.IndexSize == 2 {
		return 0xFFFF
	}
	return 0xFFFFFFFF
}

// Strip clears the attributes the layout does not store, so vertices
// compare equal to their decoded form.
func (l Layout) Strip(v Vertex) Vertex {
	if !l.HasNormal {
		v.Normal = [3]float32{}
	}
	if !l.HasTexture {
		v.UV = [2]float32{}
	}
	return v
}

// String describes the layout, e.g. "PNT/u32".
func (l Layout) String() string {
	s := "P"
	if l.HasNormal {
		s += "N"
	}
	if l.HasTexture {
		s += "T"
	}
	return fmt.Sprintf("%s/u%d", s, l.IndexSize*8)
}

// Descriptor pairs a layout with the coordinate conventions applied when
// importing right-handed source formats such as OBJ.
type Descriptor struct {
	Layout Layout `yaml:"layout" toml:"layout"`
	// InvertHandedness negates Z of positions and normals.
	InvertHandedness bool `yaml:"invert_handedness" toml:"invert_handedness"`
	// ClockwiseOrder emits triangles in clockwise winding.
	ClockwiseOrder bool `yaml:"clockwise_order" toml:"clockwise_order"`
	// FlipV stores texture coordinates as (u, 1 - v).
	FlipV bool `yaml:"flip_v" toml:"flip_v"`
}

// DefaultDescriptor converts right-handed, counter-clockwise, bottom-left
// UV data to the engine's left-handed, clockwise, top-left convention.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Layout:           DefaultLayout(),
		InvertHandedness: true,
		ClockwiseOrder:   true,
		FlipV:            true,
	}
}

// Validate checks the descriptor's layout.
func (d Descriptor) Validate() error {
	return d.Layout.Validate()
}
