// Package model holds the parsed form of a model: vertex and index buffers,
// a flat list of named parts, and the material table.
package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshforge/pkg/mesh"
	"github.com/Faultbox/meshforge/pkg/texture"
)

// ErrInvalidOutput is returned by Output.Validate.
var ErrInvalidOutput = errors.New("invalid model output")

// RootName is the parent token that denotes a root part in text formats.
const RootName = "root"

// Part is one named sub-mesh segment. Parent refers to another part by its
// Child name; an empty Parent makes the part a root.
type Part struct {
	Child       string
	Parent      string
	Translation [3]float32
	Rotation    [3]float32 // Euler angles, radians
	Scale       [3]float32
	Material    string
	StartIndex  uint32
	IndexCount  uint32
}

// NewPart returns a root part with an identity transform.
func NewPart(name string) Part {
	return Part{Child: name, Scale: [3]float32{1, 1, 1}}
}

// IsRoot reports whether the part has no parent.
func (p Part) IsRoot() bool {
	return p.Parent == ""
}

// End returns one past the last index of the part.
func (p Part) End() uint64 {
	return uint64(p.StartIndex) + uint64(p.IndexCount)
}

// Output is everything a model reader produces. A reader fills an empty
// Output in one pass; after a failed read the contents must be discarded.
type Output struct {
	Vertices  []mesh.Vertex
	Indices   []uint32
	Parts     []Part
	Materials []Material
}

// Empty reports whether no geometry has been loaded.
func (o *Output) Empty() bool {
	return len(o.Vertices) == 0 && len(o.Indices) == 0
}

// Validate checks that every part's index range lies inside the index buffer
// and that every index addresses a vertex.
func (o *Output) Validate() error {
	if len(o.Indices) > 0 && len(o.Vertices) == 0 {
		return fmt.Errorf("%w: %d indices but no vertices", ErrInvalidOutput, len(o.Indices))
	}
	if len(o.Parts) > 0 && len(o.Vertices) == 0 {
		return fmt.Errorf("%w: %d parts but no vertices", ErrInvalidOutput, len(o.Parts))
	}
	for i, idx := range o.Indices {
		if int(idx) >= len(o.Vertices) {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)",
				ErrInvalidOutput, idx, i, len(o.Vertices))
		}
	}
	for _, p := range o.Parts {
		if p.End() > uint64(len(o.Indices)) {
			return fmt.Errorf("%w: part %q range [%d,%d) exceeds %d indices",
				ErrInvalidOutput, p.Child, p.StartIndex, p.End(), len(o.Indices))
		}
	}
	return nil
}

// Material looks up a material by name.
func (o *Output) Material(name string) (*Material, bool) {
	for i := range o.Materials {
		if o.Materials[i].Name == name {
			return &o.Materials[i], true
		}
	}
	return nil, false
}

// Release drops the texture references held by the material table.
func (o *Output) Release() {
	for i := range o.Materials {
		o.Materials[i].Release()
	}
}

// Share returns a copy that holds its own texture references. Geometry and
// parts are shared and must be treated as read-only; the copy's Release
// only drops the references it took.
func (o *Output) Share() *Output {
	shared := *o
	shared.Materials = make([]Material, len(o.Materials))
	for i := range o.Materials {
		shared.Materials[i] = o.Materials[i].Retain()
	}
	return &shared
}

// Color is a linear RGBA color.
type Color [4]float32

// Material describes surface shading for a part.
type Material struct {
	Name             string
	LightInteraction bool
	Transparent      bool
	BaseColor        Color
	Specular         [3]float32
	Roughness        float32
	Metalness        float32

	// Texture references are shared with the texture cache.
	BaseColorTexture *texture.Ref
	MaterialTexture  *texture.Ref
	NormalTexture    *texture.Ref
}

// NewMaterial returns a lit, opaque, white material.
func NewMaterial(name string) Material {
	return Material{
		Name:             name,
		LightInteraction: true,
		BaseColor:        Color{1, 1, 1, 1},
		Roughness:        0.5,
	}
}

// Release drops all texture references and clears them.
func (m *Material) Release() {
	m.BaseColorTexture.Release()
	m.MaterialTexture.Release()
	m.NormalTexture.Release()
	m.BaseColorTexture, m.MaterialTexture, m.NormalTexture = nil, nil, nil
}

// Retain returns a copy of m holding an extra reference to each texture.
func (m Material) Retain() Material {
	for _, r := range m.Textures() {
		r.Retain()
	}
	return m
}

// Textures returns the non-nil texture references.
func (m *Material) Textures() []*texture.Ref {
	var refs []*texture.Ref
	for _, r := range []*texture.Ref{m.BaseColorTexture, m.MaterialTexture, m.NormalTexture} {
		if r != nil {
			refs = append(refs, r)
		}
	}
	return refs
}
