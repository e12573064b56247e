package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/meshforge/pkg/binio"
	"github.com/Faultbox/meshforge/pkg/texture"
)

// SpriteFontMagic opens every sprite font file.
const SpriteFontMagic = "MAGEfont"

// Rect is a glyph's source rectangle in the atlas, in texels.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Width returns the rectangle width.
func (r Rect) Width() int32 { return r.Right - r.Left }

// Height returns the rectangle height.
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Glyph is the 32-byte on-disk glyph record.
type Glyph struct {
	Character uint32
	Subrect   Rect
	XOffset   float32
	YOffset   float32
	XAdvance  float32
}

// SpriteFontDescriptor controls how a font's atlas is created.
type SpriteFontDescriptor struct {
	// ForceSRGB reinterprets the atlas format as its sRGB variant.
	ForceSRGB bool
	// Order is the file byte order; nil means big-endian.
	Order binary.ByteOrder
}

// SpriteFontOutput is a loaded font: glyphs, metrics and the atlas texture.
type SpriteFontOutput struct {
	Glyphs           []Glyph
	LineSpacing      float32
	DefaultCharacter rune
	Texture          *texture.Ref

	kerning map[[2]rune]float32
	lookup  map[rune]int
}

// Glyph returns the glyph for r, falling back to the default character.
func (o *SpriteFontOutput) Glyph(r rune) (*Glyph, bool) {
	if i, ok := o.lookup[r]; ok {
		return &o.Glyphs[i], true
	}
	if i, ok := o.lookup[o.DefaultCharacter]; ok {
		return &o.Glyphs[i], true
	}
	return nil, false
}

// Kerning returns the advance adjustment between two characters.
func (o *SpriteFontOutput) Kerning(first, second rune) float32 {
	return o.kerning[[2]rune{first, second}]
}

// Release drops the atlas texture.
func (o *SpriteFontOutput) Release() {
	o.Texture.Release()
	o.Texture = nil
}

// Share returns a copy holding its own reference to the atlas. Glyph data
// is shared read-only.
func (o *SpriteFontOutput) Share() *SpriteFontOutput {
	shared := *o
	if o.Texture != nil {
		shared.Texture = o.Texture.Retain()
	}
	return &shared
}

func (o *SpriteFontOutput) index() {
	o.lookup = make(map[rune]int, len(o.Glyphs))
	for i, g := range o.Glyphs {
		o.lookup[rune(g.Character)] = i
	}
}

// ReadSpriteFontFile loads a sprite font and creates its atlas with creator.
func ReadSpriteFontFile(path string, creator texture.Creator, desc SpriteFontDescriptor, out *SpriteFontOutput) error {
	r, err := binio.ReadFile(path, desc.Order)
	if err != nil {
		return err
	}
	return readSpriteFont(path, r, creator, desc, out)
}

// ReadSpriteFont parses sprite font data. out is only written on success.
func ReadSpriteFont(name string, data []byte, creator texture.Creator, desc SpriteFontDescriptor, out *SpriteFontOutput) error {
	return readSpriteFont(name, binio.NewReader(data, desc.Order), creator, desc, out)
}

func readSpriteFont(name string, r *binio.Reader, creator texture.Creator, desc SpriteFontDescriptor, out *SpriteFontOutput) error {
	magic, err := r.ReadBytes(len(SpriteFontMagic))
	if err != nil || string(magic) != SpriteFontMagic {
		return fmt.Errorf("%s: %w: not a sprite font", name, ErrInvalidHeader)
	}

	var font SpriteFontOutput
	if err := readGlyphs(r, &font); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	tdesc, pixels, err := readAtlas(r, desc.ForceSRGB)
	if err != nil {
		return fmt.Errorf("%s: reading atlas: %w", name, err)
	}

	// pixels aliases the file buffer; the creator copies it.
	h, err := creator.CreateTexture(tdesc, pixels)
	if err != nil {
		return &ResourceCreationError{Path: name, Err: err}
	}
	font.Texture = texture.NewRef(name, h)
	font.index()
	*out = font
	return nil
}

func readGlyphs(r *binio.Reader, font *SpriteFontOutput) error {
	count, err := r.ReadCount(binary.Size(Glyph{}))
	if err != nil {
		return fmt.Errorf("reading glyph count: %w", err)
	}
	if font.Glyphs, err = binio.ReadArray[Glyph](r, count); err != nil {
		return fmt.Errorf("reading %d glyphs: %w", count, err)
	}
	if font.LineSpacing, err = r.ReadF32(); err != nil {
		return fmt.Errorf("reading line spacing: %w", err)
	}
	def, err := r.ReadU32()
	if err != nil {
		return fmt.Errorf("reading default character: %w", err)
	}
	font.DefaultCharacter = rune(def)
	return nil
}

type atlasHeader struct {
	Width, Height, Format, Stride, Rows uint32
}

func readAtlas(r *binio.Reader, forceSRGB bool) (texture.Desc, []byte, error) {
	hdr, err := binio.Read[atlasHeader](r)
	if err != nil {
		return texture.Desc{}, nil, err
	}

	format := texture.PixelFormat(hdr.Format)
	if forceSRGB {
		format = format.ToSRGB()
	}
	desc := texture.Desc{Width: hdr.Width, Height: hdr.Height, Format: format, Stride: hdr.Stride}

	size := uint64(hdr.Stride) * uint64(hdr.Rows)
	if size > uint64(r.Len()) {
		return desc, nil, fmt.Errorf("%w: %d×%d pixel bytes, have %d", ErrTruncatedInput, hdr.Stride, hdr.Rows, r.Len())
	}
	pixels, err := r.ReadBytes(int(size))
	return desc, pixels, err
}

// SpriteFontData is the input of WriteSpriteFont.
type SpriteFontData struct {
	Glyphs           []Glyph
	LineSpacing      float32
	DefaultCharacter rune
	Atlas            texture.Desc
	Pixels           []byte
}

// WriteSpriteFont encodes a sprite font. Pixels must hold Atlas.Stride bytes
// for each of the atlas rows.
func WriteSpriteFont(f SpriteFontData, order binary.ByteOrder) ([]byte, error) {
	rows := f.Atlas.Rows()
	if need := int(f.Atlas.Stride * rows); len(f.Pixels) < need {
		return nil, fmt.Errorf("%w: %d pixel bytes, atlas needs %d", ErrTruncatedInput, len(f.Pixels), need)
	}

	w := binio.NewWriter(order)
	w.WriteBytes([]byte(SpriteFontMagic))
	w.WriteU32(uint32(len(f.Glyphs)))
	if err := binio.WriteArray(w, f.Glyphs); err != nil {
		return nil, err
	}
	if err := binio.Write(w, f.LineSpacing); err != nil {
		return nil, err
	}
	w.WriteU32(uint32(f.DefaultCharacter))
	for _, v := range []uint32{f.Atlas.Width, f.Atlas.Height, uint32(f.Atlas.Format), f.Atlas.Stride, rows} {
		w.WriteU32(v)
	}
	w.WriteBytes(f.Pixels[:f.Atlas.Stride*rows])
	return w.Bytes(), nil
}

// WriteSpriteFontFile encodes a sprite font to path.
func WriteSpriteFontFile(path string, f SpriteFontData, order binary.ByteOrder) error {
	data, err := WriteSpriteFont(f, order)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return writeTextFile(path, data)
}

// IsSpriteFont reports whether data starts with the sprite font magic.
func IsSpriteFont(data []byte) bool {
	return bytes.HasPrefix(data, []byte(SpriteFontMagic))
}

// LoadFont reads a .spritefont file or imports an AngelCode .fnt font.
func LoadFont(path string, creator texture.Creator, desc SpriteFontDescriptor, out *SpriteFontOutput) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spritefont":
		return ReadSpriteFontFile(path, creator, desc, out)
	case ".fnt":
		return ImportBMFont(path, creator, desc, out)
	default:
		return &UnsupportedFormatError{Path: path}
	}
}

func sortGlyphs(glyphs []Glyph) {
	sort.Slice(glyphs, func(i, j int) bool {
		return glyphs[i].Character < glyphs[j].Character
	})
}
