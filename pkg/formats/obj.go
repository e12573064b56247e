package formats

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/lineio"
	"github.com/Faultbox/meshforge/pkg/mesh"
	"github.com/Faultbox/meshforge/pkg/model"
)

// defaultPartName names the part that collects faces declared before any
// group or object.
const defaultPartName = "default"

// ReadOBJFile reads a Wavefront OBJ file into out, which must be empty.
func ReadOBJFile(path string, out *model.Output, opts ImportOptions) error {
	h := newOBJReader(path, out, opts)
	return lineio.NewReader(opts.lineOptions()).ReadFile(path, h)
}

// ReadOBJ parses OBJ text. name is used to resolve material libraries.
func ReadOBJ(name string, data []byte, out *model.Output, opts ImportOptions) error {
	h := newOBJReader(name, out, opts)
	return lineio.NewReader(opts.lineOptions()).ReadFromMemory(name, data, h)
}

type objReader struct {
	path string
	out  *model.Output
	opts ImportOptions
	desc mesh.Descriptor
	log  *zap.Logger

	positions [][3]float32
	uvs       [][2]float32
	normals   [][3]float32

	// vertex per (position, uv, normal) index triple, 1-based, 0 = absent
	dedup map[[3]uint32]uint32

	group    string
	material string
	open     bool
	names    map[string]int  // next suffix per base name
	used     map[string]bool // every part name handed out
	face     []uint32
}

func newOBJReader(path string, out *model.Output, opts ImportOptions) *objReader {
	return &objReader{
		path:  path,
		out:   out,
		opts:  opts,
		desc:  opts.Descriptor,
		log:   opts.logger().With(zap.String("file", path)),
		dedup: make(map[[3]uint32]uint32),
		names: make(map[string]int),
		used:  make(map[string]bool),
	}
}

func (r *objReader) Preprocess() error {
	if !r.out.Empty() {
		return fmt.Errorf("%w: model output already holds %d vertices and %d indices",
			ErrPrecondition, len(r.out.Vertices), len(r.out.Indices))
	}
	return r.desc.Validate()
}

func (r *objReader) ReadLine(line *lineio.Line) error {
	switch line.Keyword() {
	case "v":
		return r.readPosition(line)
	case "vt":
		return r.readUV(line)
	case "vn":
		return r.readNormal(line)
	case "f":
		return r.readFace(line)
	case "g", "o":
		r.group = strings.Join(line.Rest(), " ")
		if r.group == "" {
			r.group = defaultPartName
		}
		r.startPart(r.group)
		return nil
	case "usemtl":
		return r.readUseMaterial(line)
	case "mtllib":
		return r.readMaterialLibraries(line)
	case "s":
		line.Rest()
		return nil
	default:
		return line.Unrecognized()
	}
}

func (r *objReader) readPosition(line *lineio.Line) error {
	p, err := line.Vec3("position")
	if err != nil {
		return err
	}
	if r.desc.InvertHandedness {
		p[2] = -p[2]
	}
	r.positions = append(r.positions, p)
	return nil
}

func (r *objReader) readUV(line *lineio.Line) error {
	u, err := line.Float32("u")
	if err != nil {
		return err
	}
	v, err := line.Float32("v")
	if err != nil {
		return err
	}
	if r.desc.FlipV {
		v = 1 - v
	}
	r.uvs = append(r.uvs, [2]float32{u, v})
	return nil
}

func (r *objReader) readNormal(line *lineio.Line) error {
	n, err := line.Vec3("normal")
	if err != nil {
		return err
	}
	if r.desc.InvertHandedness {
		n[2] = -n[2]
	}
	r.normals = append(r.normals, n)
	return nil
}

func (r *objReader) readUseMaterial(line *lineio.Line) error {
	name, err := line.String("material name")
	if err != nil {
		return err
	}
	r.material = name
	if !r.open {
		return nil
	}
	cur := &r.out.Parts[len(r.out.Parts)-1]
	if int(cur.StartIndex) == len(r.out.Indices) {
		cur.Material = name
		return nil
	}
	r.startPart(r.group + "_" + name)
	return nil
}

func (r *objReader) readMaterialLibraries(line *lineio.Line) error {
	libs := line.Rest()
	if len(libs) == 0 {
		return fmt.Errorf("%w: missing material library", ErrParse)
	}
	for _, lib := range libs {
		path := ResolveSibling(r.path, lib)
		if err := r.opts.registry().Import(path, r.opts.Textures, &r.out.Materials); err != nil {
			return err
		}
	}
	return nil
}

func (r *objReader) readFace(line *lineio.Line) error {
	refs := line.Rest()
	if len(refs) < 3 {
		return fmt.Errorf("%w: face needs at least 3 vertices, got %d", ErrParse, len(refs))
	}
	if !r.open {
		r.group = defaultPartName
		r.startPart(r.group)
	}

	r.face = r.face[:0]
	for _, ref := range refs {
		idx, err := r.vertex(ref)
		if err != nil {
			return err
		}
		r.face = append(r.face, idx)
	}

	for i := 1; i+1 < len(r.face); i++ {
		if r.desc.ClockwiseOrder {
			r.out.Indices = append(r.out.Indices, r.face[0], r.face[i+1], r.face[i])
		} else {
			r.out.Indices = append(r.out.Indices, r.face[0], r.face[i], r.face[i+1])
		}
	}
	return nil
}

// vertex resolves a p, p/t, p//n or p/t/n reference to an output index,
// emitting a vertex the first time a triple is seen.
func (r *objReader) vertex(ref string) (uint32, error) {
	var key [3]uint32
	fields := strings.Split(ref, "/")
	if len(fields) > 3 {
		return 0, fmt.Errorf("%w: malformed vertex reference %q", ErrParse, ref)
	}
	limits := [3]int{len(r.positions), len(r.uvs), len(r.normals)}
	for i, f := range fields {
		if f == "" {
			continue
		}
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid index %q in %q", ErrParse, f, ref)
		}
		if n < 0 || n > int64(limits[i]) {
			return 0, fmt.Errorf("%w: index %d in %q out of range (1..%d)", ErrParse, n, ref, limits[i])
		}
		key[i] = uint32(n)
	}
	if key[0] == 0 {
		return 0, fmt.Errorf("%w: vertex reference %q has no position", ErrParse, ref)
	}

	if idx, ok := r.dedup[key]; ok {
		return idx, nil
	}

	next := len(r.out.Vertices)
	if uint64(next) > uint64(r.desc.Layout.MaxIndex()) {
		return 0, fmt.Errorf("%w: vertex count exceeds %s index range", ErrParse, r.desc.Layout)
	}

	v := mesh.Vertex{Position: r.positions[key[0]-1]}
	if key[1] > 0 {
		v.UV = r.uvs[key[1]-1]
	}
	if key[2] > 0 {
		v.Normal = r.normals[key[2]-1]
	}
	r.out.Vertices = append(r.out.Vertices, r.desc.Layout.Strip(v))

	idx := uint32(next)
	r.dedup[key] = idx
	return idx, nil
}

// startPart closes the open part and opens a new root part at the current
// end of the index buffer.
func (r *objReader) startPart(name string) {
	r.closePart()
	p := model.NewPart(r.uniqueName(name))
	p.StartIndex = uint32(len(r.out.Indices))
	p.Material = r.material
	r.out.Parts = append(r.out.Parts, p)
	r.open = true
}

func (r *objReader) closePart() {
	if !r.open {
		return
	}
	cur := &r.out.Parts[len(r.out.Parts)-1]
	cur.IndexCount = uint32(len(r.out.Indices)) - cur.StartIndex
	r.open = false
}

// uniqueName suffixes repeated group names so parts stay addressable. A
// suffixed name never collides with a name already taken, including
// groups literally named like a suffix ("a_1").
func (r *objReader) uniqueName(name string) string {
	n := r.names[name]
	unique := name
	if n > 0 {
		unique = fmt.Sprintf("%s_%d", name, n)
	}
	for r.used[unique] {
		n++
		unique = fmt.Sprintf("%s_%d", name, n)
	}
	r.names[name] = n + 1
	r.used[unique] = true
	return unique
}

func (r *objReader) Postprocess() error {
	r.closePart()

	parts := r.out.Parts[:0]
	for _, p := range r.out.Parts {
		if p.IndexCount > 0 {
			parts = append(parts, p)
		}
	}
	r.out.Parts = parts

	r.log.Debug("read OBJ",
		zap.Int("positions", len(r.positions)),
		zap.Int("vertices", len(r.out.Vertices)),
		zap.Int("indices", len(r.out.Indices)),
		zap.Int("parts", len(r.out.Parts)))
	return nil
}
