package formats

import (
	"encoding/binary"
	"fmt"

	"github.com/Faultbox/meshforge/pkg/binio"
	"github.com/Faultbox/meshforge/pkg/mesh"
)

// MSH layout:
//
//	u32 vertex_count
//	vertex_count × vertex   (position, then normal and UV per layout)
//	u32 index_count
//	index_count × index     (u16 or u32 per layout)
//
// There is no magic or version; the layout must be known by the caller.

// On-disk vertex records for layouts without every attribute.
type (
	mshVertexP struct {
		Position [3]float32
	}
	mshVertexPN struct {
		Position [3]float32
		Normal   [3]float32
	}
	mshVertexPT struct {
		Position [3]float32
		UV       [2]float32
	}
)

// ReadMSH decodes an MSH buffer and appends its vertices and indices.
func ReadMSH(data []byte, layout mesh.Layout, order binary.ByteOrder, vertices *[]mesh.Vertex, indices *[]uint32) error {
	return readMSH(binio.NewReader(data, order), layout, vertices, indices)
}

// ReadMSHFile loads and decodes an MSH file.
func ReadMSHFile(path string, layout mesh.Layout, order binary.ByteOrder, vertices *[]mesh.Vertex, indices *[]uint32) error {
	r, err := binio.ReadFile(path, order)
	if err != nil {
		return err
	}
	if err := readMSH(r, layout, vertices, indices); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func readMSH(r *binio.Reader, layout mesh.Layout, vertices *[]mesh.Vertex, indices *[]uint32) error {
	if err := layout.Validate(); err != nil {
		return err
	}

	vcount, err := r.ReadCount(layout.VertexSize())
	if err != nil {
		return fmt.Errorf("reading vertex count: %w", err)
	}
	vs, err := readVertices(r, layout, vcount)
	if err != nil {
		return fmt.Errorf("reading %d vertices: %w", vcount, err)
	}

	icount, err := r.ReadCount(layout.IndexSize)
	if err != nil {
		return fmt.Errorf("reading index count: %w", err)
	}
	is, err := readIndices(r, layout, icount)
	if err != nil {
		return fmt.Errorf("reading %d indices: %w", icount, err)
	}

	*vertices = append(*vertices, vs...)
	*indices = append(*indices, is...)
	return nil
}

func readVertices(r *binio.Reader, layout mesh.Layout, n int) ([]mesh.Vertex, error) {
	switch {
	case layout.HasNormal && layout.HasTexture:
		return binio.ReadArray[mesh.Vertex](r, n)
	case layout.HasNormal:
		return decodeVertices(r, n, func(v mshVertexPN) mesh.Vertex {
			return mesh.Vertex{Position: v.Position, Normal: v.Normal}
		})
	case layout.HasTexture:
		return decodeVertices(r, n, func(v mshVertexPT) mesh.Vertex {
			return mesh.Vertex{Position: v.Position, UV: v.UV}
		})
	default:
		return decodeVertices(r, n, func(v mshVertexP) mesh.Vertex {
			return mesh.Vertex{Position: v.Position}
		})
	}
}

func decodeVertices[T any](r *binio.Reader, n int, conv func(T) mesh.Vertex) ([]mesh.Vertex, error) {
	raw, err := binio.ReadArray[T](r, n)
	if err != nil {
		return nil, err
	}
	out := make([]mesh.Vertex, len(raw))
	for i, v := range raw {
		out[i] = conv(v)
	}
	return out, nil
}

func readIndices(r *binio.Reader, layout mesh.Layout, n int) ([]uint32, error) {
	if layout.IndexSize == 4 {
		return binio.ReadArray[uint32](r, n)
	}
	raw, err := binio.ReadArray[uint16](r, n)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(raw))
	for i, idx := range raw {
		out[i] = uint32(idx)
	}
	return out, nil
}

// WriteMSH encodes vertices and indices in the given layout. Attributes the
// layout omits are dropped.
func WriteMSH(layout mesh.Layout, order binary.ByteOrder, vertices []mesh.Vertex, indices []uint32) ([]byte, error) {
	w := binio.NewWriter(order)
	if err := writeMSH(w, layout, vertices, indices); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// WriteMSHFile encodes and writes an MSH file.
func WriteMSHFile(path string, layout mesh.Layout, order binary.ByteOrder, vertices []mesh.Vertex, indices []uint32) error {
	w := binio.NewWriter(order)
	if err := writeMSH(w, layout, vertices, indices); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return w.WriteFile(path)
}

func writeMSH(w *binio.Writer, layout mesh.Layout, vertices []mesh.Vertex, indices []uint32) error {
	if err := layout.Validate(); err != nil {
		return err
	}

	w.WriteU32(uint32(len(vertices)))
	var err error
	switch {
	case layout.HasNormal && layout.HasTexture:
		err = binio.WriteArray(w, vertices)
	case layout.HasNormal:
		err = encodeVertices(w, vertices, func(v mesh.Vertex) mshVertexPN {
			return mshVertexPN{Position: v.Position, Normal: v.Normal}
		})
	case layout.HasTexture:
		err = encodeVertices(w, vertices, func(v mesh.Vertex) mshVertexPT {
			return mshVertexPT{Position: v.Position, UV: v.UV}
		})
	default:
		err = encodeVertices(w, vertices, func(v mesh.Vertex) mshVertexP {
			return mshVertexP{Position: v.Position}
		})
	}
	if err != nil {
		return fmt.Errorf("writing vertices: %w", err)
	}

	w.WriteU32(uint32(len(indices)))
	if layout.IndexSize == 4 {
		return binio.WriteArray(w, indices)
	}
	narrow := make([]uint16, len(indices))
	for i, idx := range indices {
		if idx > layout.MaxIndex() {
			return fmt.Errorf("%w: index %d at %d does not fit %s", ErrParse, idx, i, layout)
		}
		narrow[i] = uint16(idx)
	}
	return binio.WriteArray(w, narrow)
}

func encodeVertices[T any](w *binio.Writer, vertices []mesh.Vertex, conv func(mesh.Vertex) T) error {
	out := make([]T, len(vertices))
	for i, v := range vertices {
		out[i] = conv(v)
	}
	return binio.WriteArray(w, out)
}
