package formats

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/lineio"
	"github.com/Faultbox/meshforge/pkg/model"
	"github.com/Faultbox/meshforge/pkg/texture"
)

// NewMTLParser returns a MaterialParser for Wavefront MTL libraries.
func NewMTLParser(opts lineio.Options) MaterialParser {
	return func(path string, src TextureSource, materials *[]model.Material) error {
		h := &mtlReader{path: path, src: src, out: materials, first: len(*materials)}
		h.log = zap.NewNop()
		if opts.Logger != nil {
			h.log = opts.Logger.With(zap.String("file", path))
		}
		err := lineio.NewReader(opts).ReadFile(path, h)
		if err != nil {
			h.discard()
		}
		return err
	}
}

type mtlReader struct {
	path  string
	src   TextureSource
	out   *[]model.Material
	first int
	log   *zap.Logger
}

func (r *mtlReader) Preprocess() error { return nil }

func (r *mtlReader) Postprocess() error {
	for i := r.first; i < len(*r.out); i++ {
		m := &(*r.out)[i]
		m.Transparent = m.BaseColor[3] < 1
	}
	r.log.Debug("read material library", zap.Int("materials", len(*r.out)-r.first))
	return nil
}

// discard drops the materials appended by a failed read.
func (r *mtlReader) discard() {
	for i := r.first; i < len(*r.out); i++ {
		(*r.out)[i].Release()
	}
	*r.out = (*r.out)[:r.first]
}

func (r *mtlReader) current() (*model.Material, error) {
	if len(*r.out) == r.first {
		return nil, fmt.Errorf("%w: material property before newmtl", ErrParse)
	}
	return &(*r.out)[len(*r.out)-1], nil
}

// mtlProperties are the keywords that modify the current material.
var mtlProperties = map[string]bool{
	"Kd": true, "Ks": true, "Ns": true, "Pr": true, "Pm": true,
	"d": true, "Tr": true, "illum": true,
	"map_Kd": true, "map_Ks": true, "map_Pr": true, "map_Pm": true,
	"norm": true, "map_bump": true, "bump": true,
}

func (r *mtlReader) ReadLine(line *lineio.Line) error {
	if line.Keyword() == "newmtl" {
		return r.newMaterial(line)
	}
	if !mtlProperties[line.Keyword()] {
		return line.Unrecognized()
	}

	m, err := r.current()
	if err != nil {
		return err
	}

	switch line.Keyword() {
	case "Kd":
		rgb, err := line.Vec3("diffuse color")
		if err != nil {
			return err
		}
		copy(m.BaseColor[:3], rgb[:])
	case "Ks":
		if m.Specular, err = line.Vec3("specular color"); err != nil {
			return err
		}
	case "Ns":
		ns, err := line.Float32("specular exponent")
		if err != nil {
			return err
		}
		m.Roughness = exponentToRoughness(ns)
	case "Pr":
		if m.Roughness, err = line.Float32("roughness"); err != nil {
			return err
		}
	case "Pm":
		if m.Metalness, err = line.Float32("metalness"); err != nil {
			return err
		}
	case "d":
		if m.BaseColor[3], err = line.Float32("dissolve"); err != nil {
			return err
		}
	case "Tr":
		tr, err := line.Float32("transparency")
		if err != nil {
			return err
		}
		m.BaseColor[3] = 1 - tr
	case "illum":
		illum, err := line.Int("illumination model")
		if err != nil {
			return err
		}
		m.LightInteraction = illum != 0
	case "map_Kd":
		return r.readTexture(line, &m.BaseColorTexture, true)
	case "map_Ks", "map_Pr", "map_Pm":
		return r.readTexture(line, &m.MaterialTexture, false)
	case "norm", "map_bump", "bump":
		return r.readTexture(line, &m.NormalTexture, false)
	default:
		return line.Unrecognized()
	}
	return nil
}

func (r *mtlReader) newMaterial(line *lineio.Line) error {
	name, err := line.String("material name")
	if err != nil {
		return err
	}
	for _, m := range (*r.out)[r.first:] {
		if m.Name == name {
			return fmt.Errorf("%w: duplicate material %q", ErrParse, name)
		}
	}
	*r.out = append(*r.out, model.NewMaterial(name))
	return nil
}

// readTexture loads the map named by the last token of the line. Option
// flags such as "-bm 1" before the file name are ignored.
func (r *mtlReader) readTexture(line *lineio.Line, slot **texture.Ref, srgb bool) error {
	args := line.Rest()
	if len(args) == 0 {
		return fmt.Errorf("%w: missing texture file", ErrParse)
	}
	if r.src == nil {
		return nil
	}

	path := ResolveSibling(r.path, args[len(args)-1])
	ref, err := r.src.Texture(path, srgb)
	if err != nil {
		return err
	}
	(*slot).Release()
	*slot = ref
	return nil
}

// exponentToRoughness maps a Blinn-Phong exponent onto [0, 1] roughness.
func exponentToRoughness(ns float32) float32 {
	if ns <= 0 {
		return 1
	}
	return math32.Sqrt(2 / (ns + 2))
}
