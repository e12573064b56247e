package formats

import (
	"fmt"

	"github.com/fzipp/bmfont"

	"github.com/Faultbox/meshforge/pkg/texture"
)

// ImportBMFont imports an AngelCode BMFont text descriptor and its single
// atlas page into out.
func ImportBMFont(path string, creator texture.Creator, desc SpriteFontDescriptor, out *SpriteFontOutput) error {
	font, err := bmfont.Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrParse, err)
	}
	d := font.Descriptor

	if len(d.Pages) != 1 {
		return fmt.Errorf("%s: %w: %d atlas pages (only single-page fonts are supported)",
			path, ErrUnsupportedFormat, len(d.Pages))
	}
	var pageFile string
	for _, p := range d.Pages {
		pageFile = p.File
	}

	var f SpriteFontOutput
	f.LineSpacing = float32(d.Common.LineHeight)
	f.Glyphs = make([]Glyph, 0, len(d.Chars))
	for _, c := range d.Chars {
		f.Glyphs = append(f.Glyphs, Glyph{
			Character: uint32(c.ID),
			Subrect: Rect{
				Left:   int32(c.X),
				Top:    int32(c.Y),
				Right:  int32(c.X + c.Width),
				Bottom: int32(c.Y + c.Height),
			},
			XOffset:  float32(c.XOffset),
			YOffset:  float32(c.YOffset),
			XAdvance: float32(c.XAdvance),
		})
	}
	sortGlyphs(f.Glyphs)
	f.DefaultCharacter = pickDefaultCharacter(f.Glyphs)

	f.kerning = make(map[[2]rune]float32, len(d.Kerning))
	for pair, k := range d.Kerning {
		f.kerning[[2]rune{rune(pair.First), rune(pair.Second)}] = float32(k.Amount)
	}

	atlasPath := ResolveSibling(path, pageFile)
	img, err := texture.DecodeFile(atlasPath)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	h, err := texture.Upload(creator, img, desc.ForceSRGB)
	if err != nil {
		return &ResourceCreationError{Path: atlasPath, Err: err}
	}

	f.Texture = texture.NewRef(atlasPath, h)
	f.index()
	*out = f
	return nil
}

// pickDefaultCharacter prefers '?', then the lowest code point.
func pickDefaultCharacter(sorted []Glyph) rune {
	for _, g := range sorted {
		if g.Character == '?' {
			return '?'
		}
	}
	if len(sorted) > 0 {
		return rune(sorted[0].Character)
	}
	return 0
}
