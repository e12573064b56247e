package formats

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/meshforge/pkg/lineio"
	"github.com/Faultbox/meshforge/pkg/mesh"
	"github.com/Faultbox/meshforge/pkg/model"
)

// writeModel writes name.mdl with the given text and a companion mesh.
func writeModel(t *testing.T, dir, name, text string) string {
	t.Helper()
	if err := WriteMSHFile(filepath.Join(dir, name+".msh"), mesh.DefaultLayout(), nil,
		sampleVertices(), []uint32{0, 1, 2, 2, 1, 0}); err != nil {
		t.Fatalf("writing mesh: %v", err)
	}
	return writeFile(t, dir, name+".mdl", []byte(text))
}

const carMDL = `# car
material_library car.mtl
submodel body root 0 1 0 0 0 0 1 1 1 paint 0 3
submodel wheel body 1 0 0 0 1.5 0 0.5 0.5 0.5 rubber 3 3
submodel antenna ROOT 0 0 0 0 0 0 1 1 1 - 0 0
`

func TestMDL_Read(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "car.mtl", []byte("newmtl paint\nKd 0.8 0 0\nnewmtl rubber\nKd 0.1 0.1 0.1\nNs 0\n"))
	path := writeModel(t, dir, "car", carMDL)

	var out model.Output
	if err := ReadMDLFile(path, &out, DefaultImportOptions()); err != nil {
		t.Fatalf("ReadMDLFile failed: %v", err)
	}

	if len(out.Vertices) != 3 || len(out.Indices) != 6 {
		t.Errorf("mesh not loaded: %d vertices, %d indices", len(out.Vertices), len(out.Indices))
	}
	if len(out.Materials) != 2 || out.Materials[1].Name != "rubber" || out.Materials[1].Roughness != 1 {
		t.Errorf("unexpected materials %+v", out.Materials)
	}
	if len(out.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(out.Parts))
	}

	wheel := out.Parts[1]
	if wheel.Child != "wheel" || wheel.Parent != "body" || wheel.Material != "rubber" {
		t.Errorf("wheel = %+v", wheel)
	}
	if wheel.Translation != [3]float32{1, 0, 0} || wheel.Rotation != [3]float32{0, 1.5, 0} ||
		wheel.Scale != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("wheel transform = %v %v %v", wheel.Translation, wheel.Rotation, wheel.Scale)
	}
	if wheel.StartIndex != 3 || wheel.IndexCount != 3 {
		t.Errorf("wheel range = %d+%d", wheel.StartIndex, wheel.IndexCount)
	}
	if !out.Parts[0].IsRoot() || !out.Parts[2].IsRoot() {
		t.Error("root parent token not mapped to an empty parent")
	}
	if out.Parts[2].Material != "" {
		t.Errorf("expected no material, got %q", out.Parts[2].Material)
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestMDL_UnresolvedParentIsKept(t *testing.T) {
	dir := t.TempDir()
	path := writeModel(t, dir, "orphan", "submodel arm ghost 0 0 0 0 0 0 1 1 1 - 0 3\n")

	var out model.Output
	if err := ReadMDLFile(path, &out, DefaultImportOptions()); err != nil {
		t.Fatalf("ReadMDLFile failed: %v", err)
	}
	if out.Parts[0].Parent != "ghost" {
		t.Errorf("Parent = %q", out.Parts[0].Parent)
	}
	if _, err := model.BuildTree(out.Parts); !errors.Is(err, model.ErrMissingParent) {
		t.Errorf("expected ErrMissingParent from BuildTree, got %v", err)
	}
}

func TestMDL_Precondition(t *testing.T) {
	dir := t.TempDir()
	path := writeModel(t, dir, "car", carMDL)

	out := model.Output{Vertices: sampleVertices()[:1]}
	err := ReadMDLFile(path, &out, DefaultImportOptions())
	if !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	var lerr *lineio.Error
	if errors.As(err, &lerr) && lerr.Line != 0 {
		t.Errorf("precondition failed at line %d, want before any line", lerr.Line)
	}
	if len(out.Vertices) != 1 || len(out.Parts) != 0 {
		t.Error("output modified despite failed precondition")
	}
}

func TestMDL_MissingMesh(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lonely.mdl", []byte("submodel a root 0 0 0 0 0 0 1 1 1 - 0 0\n"))

	var out model.Output
	err := ReadMDLFile(path, &out, DefaultImportOptions())
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestMDL_UnrecognizedKeyword(t *testing.T) {
	dir := t.TempDir()
	path := writeModel(t, dir, "m", "lod 2\nsubmodel a root 0 0 0 0 0 0 1 1 1 - 0 3\n")
	log, logs := observedLogger()

	var out model.Output
	if err := ReadMDLFile(path, &out, ImportOptions{Descriptor: mesh.DefaultDescriptor(), Logger: log}); err != nil {
		t.Fatalf("ReadMDLFile failed: %v", err)
	}
	if len(out.Parts) != 1 {
		t.Errorf("expected the valid line to parse, got %d parts", len(out.Parts))
	}
	if logs.FilterMessage("skipping unrecognized line").Len() != 1 {
		t.Errorf("expected one warning, got %d log entries", logs.Len())
	}
}

func TestMDL_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bad float", "submodel a root 0 zero 0 0 0 0 1 1 1 - 0 3"},
		{"missing count", "submodel a root 0 0 0 0 0 0 1 1 1 - 0"},
		{"negative start", "submodel a root 0 0 0 0 0 0 1 1 1 - -1 3"},
		{"missing library", "material_library"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeModel(t, dir, "m", "# header\n"+tt.line+"\n")

			var out model.Output
			err := ReadMDLFile(path, &out, DefaultImportOptions())
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			var lerr *lineio.Error
			if !errors.As(err, &lerr) || lerr.Line != 2 {
				t.Errorf("expected error on line 2, got %v", err)
			}
		})
	}
}

func TestMDL_UnsupportedLibrary(t *testing.T) {
	dir := t.TempDir()
	path := writeModel(t, dir, "m", "mtllib car.unknownext\n")

	var out model.Output
	err := ReadMDLFile(path, &out, DefaultImportOptions())
	var uerr *UnsupportedFormatError
	if !errors.As(err, &uerr) || !strings.HasSuffix(uerr.Path, "car.unknownext") {
		t.Errorf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestMDL_WriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := model.Output{
		Vertices: sampleVertices(),
		Indices:  []uint32{0, 1, 2, 0, 2, 1},
		Parts: []model.Part{
			{Child: "hull", Translation: [3]float32{0.1, 0, -2}, Scale: [3]float32{1, 1, 1}, Material: "steel", IndexCount: 3},
			{Child: "turret", Parent: "hull", Rotation: [3]float32{0, 3.1415927, 0}, Scale: [3]float32{2, 2, 2}, StartIndex: 3, IndexCount: 3},
		},
	}
	writeFile(t, dir, "tank.mtl", []byte("newmtl steel\n"))
	path := filepath.Join(dir, "tank.mdl")

	opts := DefaultImportOptions()
	if err := WriteMDLFile(path, &src, opts, "tank.mtl"); err != nil {
		t.Fatalf("WriteMDLFile failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tank.msh")); err != nil {
		t.Fatalf("companion mesh not written: %v", err)
	}

	var got model.Output
	if err := ReadMDLFile(path, &got, opts); err != nil {
		t.Fatalf("ReadMDLFile failed: %v", err)
	}
	if len(got.Parts) != 2 || len(got.Materials) != 1 {
		t.Fatalf("got %d parts, %d materials", len(got.Parts), len(got.Materials))
	}
	for i := range src.Parts {
		if got.Parts[i] != src.Parts[i] {
			t.Errorf("part %d = %+v, want %+v", i, got.Parts[i], src.Parts[i])
		}
	}
	if len(got.Indices) != 6 || got.Indices[4] != 2 {
		t.Errorf("indices = %v", got.Indices)
	}
}

func TestMarshalMDL_RejectsUnwritableNames(t *testing.T) {
	tests := []model.Part{
		{Child: "left door"},
		{Child: ""},
		{Child: "a", Material: "#hash"},
	}
	for _, p := range tests {
		_, err := MarshalMDL(&model.Output{Parts: []model.Part{p}})
		if !errors.Is(err, ErrParse) {
			t.Errorf("part %+v: expected ErrParse, got %v", p, err)
		}
	}
}
