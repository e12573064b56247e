package formats

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/lineio"
	"github.com/Faultbox/meshforge/pkg/model"
)

// MDL keywords.
const (
	mdlSubmodel        = "submodel"
	mdlMaterialLibrary = "material_library"
	mdlMaterialAlias   = "mtllib"
)

// noMaterial stands in for an empty material name on a submodel line.
const noMaterial = "-"

// ReadMDLFile reads an MDL model and its companion .msh mesh into out.
// out must not hold any geometry yet.
func ReadMDLFile(path string, out *model.Output, opts ImportOptions) error {
	h := newMDLReader(path, out, opts)
	return lineio.NewReader(opts.lineOptions()).ReadFile(path, h)
}

// ReadMDL parses MDL text. name locates the companion mesh and material
// libraries.
func ReadMDL(name string, data []byte, out *model.Output, opts ImportOptions) error {
	h := newMDLReader(name, out, opts)
	return lineio.NewReader(opts.lineOptions()).ReadFromMemory(name, data, h)
}

type mdlReader struct {
	path string
	out  *model.Output
	opts ImportOptions
	log  *zap.Logger
}

func newMDLReader(path string, out *model.Output, opts ImportOptions) *mdlReader {
	return &mdlReader{
		path: path,
		out:  out,
		opts: opts,
		log:  opts.logger().With(zap.String("file", path)),
	}
}

// Preprocess loads the mesh before any submodel line refers into it.
func (r *mdlReader) Preprocess() error {
	if !r.out.Empty() {
		return fmt.Errorf("%w: model output already holds %d vertices and %d indices",
			ErrPrecondition, len(r.out.Vertices), len(r.out.Indices))
	}
	mshPath := ReplaceExt(r.path, ".msh")
	return ReadMSHFile(mshPath, r.opts.Descriptor.Layout, r.opts.order(), &r.out.Vertices, &r.out.Indices)
}

func (r *mdlReader) ReadLine(line *lineio.Line) error {
	switch line.Keyword() {
	case mdlSubmodel:
		return r.readSubmodel(line)
	case mdlMaterialLibrary, mdlMaterialAlias:
		return r.readMaterialLibrary(line)
	default:
		return line.Unrecognized()
	}
}

func (r *mdlReader) readSubmodel(line *lineio.Line) error {
	child, err := line.String("child name")
	if err != nil {
		return err
	}
	parent, err := line.String("parent name")
	if err != nil {
		return err
	}
	if strings.EqualFold(parent, model.RootName) {
		parent = ""
	}

	p := model.Part{Child: child, Parent: parent}
	if p.Translation, err = line.Vec3("translation"); err != nil {
		return err
	}
	if p.Rotation, err = line.Vec3("rotation"); err != nil {
		return err
	}
	if p.Scale, err = line.Vec3("scale"); err != nil {
		return err
	}
	if p.Material, err = line.String("material"); err != nil {
		return err
	}
	if p.Material == noMaterial {
		p.Material = ""
	}
	if p.StartIndex, err = line.Uint32("start index"); err != nil {
		return err
	}
	if p.IndexCount, err = line.Uint32("index count"); err != nil {
		return err
	}

	r.out.Parts = append(r.out.Parts, p)
	return nil
}

func (r *mdlReader) readMaterialLibrary(line *lineio.Line) error {
	name, err := line.String("material library")
	if err != nil {
		return err
	}
	path := ResolveSibling(r.path, name)
	before := len(r.out.Materials)
	if err := r.opts.registry().Import(path, r.opts.Textures, &r.out.Materials); err != nil {
		return err
	}
	r.log.Debug("loaded material library",
		zap.String("library", path),
		zap.Int("materials", len(r.out.Materials)-before))
	return nil
}

func (r *mdlReader) Postprocess() error {
	r.log.Debug("read model",
		zap.Int("vertices", len(r.out.Vertices)),
		zap.Int("indices", len(r.out.Indices)),
		zap.Int("parts", len(r.out.Parts)),
		zap.Int("materials", len(r.out.Materials)))
	return nil
}

// WriteMDLFile writes out as an MDL file plus its companion .msh mesh.
// libraries are written as material_library lines relative to path.
func WriteMDLFile(path string, out *model.Output, opts ImportOptions, libraries ...string) error {
	text, err := MarshalMDL(out, libraries...)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	mshPath := ReplaceExt(path, ".msh")
	if err := WriteMSHFile(mshPath, opts.Descriptor.Layout, opts.order(), out.Vertices, out.Indices); err != nil {
		return err
	}
	return writeTextFile(path, text)
}

// MarshalMDL renders the part list and library references as MDL text.
func MarshalMDL(out *model.Output, libraries ...string) ([]byte, error) {
	var b strings.Builder
	b.WriteString("# meshforge model\n")
	for _, lib := range libraries {
		if err := checkMDLToken("material library", lib); err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%s %s\n", mdlMaterialLibrary, lib)
	}

	for _, p := range out.Parts {
		parent := p.Parent
		if parent == "" {
			parent = model.RootName
		}
		material := p.Material
		if material == "" {
			material = noMaterial
		}
		for _, tok := range [][2]string{{"child name", p.Child}, {"parent name", parent}, {"material", material}} {
			if err := checkMDLToken(tok[0], tok[1]); err != nil {
				return nil, err
			}
		}

		fields := []string{mdlSubmodel, p.Child, parent}
		for _, v := range [][3]float32{p.Translation, p.Rotation, p.Scale} {
			for _, f := range v {
				fields = append(fields, strconv.FormatFloat(float64(f), 'g', -1, 32))
			}
		}
		fields = append(fields, material,
			strconv.FormatUint(uint64(p.StartIndex), 10),
			strconv.FormatUint(uint64(p.IndexCount), 10))
		b.WriteString(strings.Join(fields, " "))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func checkMDLToken(field, tok string) error {
	if tok == "" || strings.ContainsAny(tok, lineio.DefaultDelimiters+"\n") || strings.HasPrefix(tok, lineio.DefaultComment) {
		return fmt.Errorf("%w: %s %q cannot be written as a single token", ErrParse, field, tok)
	}
	return nil
}
