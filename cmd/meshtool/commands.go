package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/internal/config"
	"github.com/Faultbox/meshforge/internal/logger"
	"github.com/Faultbox/meshforge/pkg/formats"
	"github.com/Faultbox/meshforge/pkg/model"
	"github.com/Faultbox/meshforge/pkg/texture"
)

var errUsage = errors.New("invalid arguments")

func isModel(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".mdl", ".msh":
		return true
	}
	return false
}

func isFont(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spritefont", ".fnt":
		return true
	}
	return false
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file>")
		return errUsage
	}
	m, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	path := args[0]
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case isModel(path) || isFont(path):
		return printAsset(m, path)
	case ext == ".mtl":
		mats, err := m.LoadMaterials(path)
		if err != nil {
			return err
		}
		defer func() {
			for i := range mats {
				mats[i].Release()
			}
		}()
		fmt.Printf("Library:   %s\n", path)
		fmt.Printf("Materials: %d\n", len(mats))
		printMaterials(mats)
	default:
		img, err := texture.DecodeFile(m.Resolve(path))
		if err != nil {
			return err
		}
		b := img.Bounds()
		fmt.Printf("Image: %s\n", path)
		fmt.Printf("Size:  %dx%d\n", b.Dx(), b.Dy())
	}
	return nil
}

// printAsset loads a model or font and prints its summary.
func printAsset(m *session, path string) error {
	if isFont(path) {
		f, err := m.LoadFont(path)
		if err != nil {
			return err
		}
		defer f.Release()
		printFont(path, f)
		return nil
	}
	out, err := m.LoadModel(path)
	if err != nil {
		return err
	}
	defer out.Release()
	printModel(path, out)
	return nil
}

func printModel(path string, out *model.Output) {
	fmt.Printf("Model:     %s\n", path)
	fmt.Printf("Vertices:  %d\n", len(out.Vertices))
	fmt.Printf("Indices:   %d (%d triangles)\n", len(out.Indices), len(out.Indices)/3)
	fmt.Printf("Parts:     %d\n", len(out.Parts))
	for _, p := range out.Parts {
		parent := p.Parent
		if p.IsRoot() {
			parent = model.RootName
		}
		mat := p.Material
		if mat == "" {
			mat = "-"
		}
		fmt.Printf("  %-20s parent=%-12s material=%-12s indices=[%d,%d)\n",
			p.Child, parent, mat, p.StartIndex, p.End())
	}
	fmt.Printf("Materials: %d\n", len(out.Materials))
	printMaterials(out.Materials)
}

func printMaterials(mats []model.Material) {
	for _, mat := range mats {
		var maps []string
		if mat.BaseColorTexture != nil {
			maps = append(maps, "base="+filepath.Base(mat.BaseColorTexture.Name()))
		}
		if mat.MaterialTexture != nil {
			maps = append(maps, "material="+filepath.Base(mat.MaterialTexture.Name()))
		}
		if mat.NormalTexture != nil {
			maps = append(maps, "normal="+filepath.Base(mat.NormalTexture.Name()))
		}
		fmt.Printf("  %-20s color=%.2v rough=%.2f metal=%.2f transparent=%v %s\n",
			mat.Name, mat.BaseColor, mat.Roughness, mat.Metalness, mat.Transparent,
			strings.Join(maps, " "))
	}
}

func printFont(path string, f *formats.SpriteFontOutput) {
	fmt.Printf("Font:         %s\n", path)
	fmt.Printf("Glyphs:       %d\n", len(f.Glyphs))
	fmt.Printf("Line spacing: %.2f\n", f.LineSpacing)
	fmt.Printf("Default:      %q\n", f.DefaultCharacter)
	if f.Texture != nil {
		d := f.Texture.Handle().Desc()
		fmt.Printf("Atlas:        %dx%d %s\n", d.Width, d.Height, d.Format)
	}
}

func cmdConvert(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	libs := fs.String("lib", "", "Comma-separated material libraries to reference (default: <input>.mtl if present)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool convert [-lib a.mtl,b.mtl] <in> <out.mdl>")
		return errUsage
	}
	m, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	in, dst := m.Resolve(fs.Arg(0)), fs.Arg(1)
	out, err := m.LoadModel(in)
	if err != nil {
		return err
	}
	defer out.Release()

	var sources []string
	if *libs != "" {
		for _, l := range strings.Split(*libs, ",") {
			sources = append(sources, m.Resolve(strings.TrimSpace(l)))
		}
	} else if mtl := formats.ReplaceExt(in, ".mtl"); fileExists(mtl) {
		sources = append(sources, mtl)
	}

	// Libraries are written relative to the output so the pair can move together.
	dstDir, err := filepath.Abs(filepath.Dir(dst))
	if err != nil {
		return err
	}
	var refs []string
	for _, src := range sources {
		rel, err := filepath.Rel(dstDir, src)
		if err != nil {
			rel = src
		}
		refs = append(refs, filepath.ToSlash(rel))
	}

	if err := formats.WriteMDLFile(dst, out, m.ImportOptions(), refs...); err != nil {
		return err
	}
	logger.Info("converted",
		zap.String("input", in),
		zap.String("output", dst),
		zap.Strings("libraries", refs))
	fmt.Printf("Wrote %s and %s (%d parts, %d vertices)\n",
		dst, formats.ReplaceExt(dst, ".msh"), len(out.Parts), len(out.Vertices))
	return nil
}

func fileExists(path string) bool {
	s, err := os.Stat(path)
	return err == nil && !s.IsDir()
}

func cmdTree(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool tree <file>")
		return errUsage
	}
	m, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	out, err := m.LoadModel(args[0])
	if err != nil {
		return err
	}
	defer out.Release()
	tree, err := model.BuildTree(out.Parts)
	if err != nil {
		return err
	}
	world := tree.WorldTransforms()
	tree.Walk(func(node, depth int) bool {
		p := tree.Parts[tree.Nodes[node].Part]
		o := world[node].Translation()
		fmt.Printf("%s%s  (%d triangles) origin=(%.3g, %.3g, %.3g)\n",
			strings.Repeat("  ", depth), p.Child, p.IndexCount/3, o.X, o.Y, o.Z)
		return true
	})
	return nil
}

func cmdFont(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool font <file> [atlas.png]")
		return errUsage
	}
	m, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	f, err := m.LoadFont(args[0])
	if err != nil {
		return err
	}
	defer f.Release()
	printFont(args[0], f)

	if len(args) < 2 {
		return nil
	}
	h, ok := f.Texture.Handle().(*texture.ImageHandle)
	if !ok {
		return fmt.Errorf("atlas of %s is not a CPU texture", args[0])
	}
	file, err := os.Create(args[1])
	if err != nil {
		return fmt.Errorf("%w: %v", formats.ErrIO, err)
	}
	defer file.Close()
	if err := png.Encode(file, h.Image()); err != nil {
		return fmt.Errorf("encoding %s: %w", args[1], err)
	}
	fmt.Printf("Atlas written to %s\n", args[1])
	return nil
}

func cmdGPUCheck(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool gpucheck <file>")
		return errUsage
	}
	path := args[0]
	if !isModel(path) && !isFont(path) {
		return &formats.UnsupportedFormatError{Path: path}
	}

	cfg.GPU.Enabled = true
	m, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	info := m.gpu.Info()
	fmt.Printf("OpenGL:   %s\n", info.Version)
	fmt.Printf("Renderer: %s (%s)\n", info.Renderer, info.Vendor)

	if err := printAsset(m, path); err != nil {
		return err
	}
	fmt.Printf("Uploaded: %d textures\n", m.gpu.Creator().Created())
	return nil
}

func cmdWatch(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool watch <file>")
		return errUsage
	}
	path := args[0]
	if !isModel(path) && !isFont(path) {
		return &formats.UnsupportedFormatError{Path: path}
	}

	cfg.Assets.Watch = true
	m, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	changed := make(chan struct{}, 1)
	m.OnEvict(func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		if err := printAsset(m, path); err != nil {
			logger.Warn("reload failed", zap.String("path", path), zap.Error(err))
		}
		fmt.Printf("Watching %s (Ctrl+C to stop)\n", m.Root())

		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			fmt.Println()
		}
	}
}
