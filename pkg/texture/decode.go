package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes an image file. TGA is selected by extension since it has no
// signature; everything else goes through the registered image decoders
// (PNG, JPEG, GIF, BMP, TIFF, WebP).
func Decode(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// DecodeFile reads and decodes an image from disk.
func DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture %s: %w", path, err)
	}
	return Decode(path, data)
}

// ToRGBA8 converts img to tightly packed RGBA rows and a matching Desc.
func ToRGBA8(img image.Image, srgb bool) (Desc, []byte) {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != b.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}

	format := FormatR8G8B8A8UNorm
	if srgb {
		format = format.ToSRGB()
	}
	desc := Desc{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: format,
		Stride: uint32(rgba.Stride),
	}
	return desc, rgba.Pix
}

// Upload converts img to RGBA8 and creates a texture with c.
func Upload(c Creator, img image.Image, srgb bool) (Handle, error) {
	desc, pixels := ToRGBA8(img, srgb)
	return c.CreateTexture(desc, pixels)
}
