package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestPixelFormat_ToSRGB(t *testing.T) {
	tests := []struct {
		in, want PixelFormat
	}{
		{FormatR8G8B8A8UNorm, FormatR8G8B8A8UNormSRGB},
		{FormatB8G8R8A8UNorm, FormatB8G8R8A8UNormSRGB},
		{FormatBC3UNorm, FormatBC3UNormSRGB},
		{FormatR8G8B8A8UNormSRGB, FormatR8G8B8A8UNormSRGB},
		{FormatA8UNorm, FormatA8UNorm},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := tt.in.ToSRGB(); got != tt.want {
				t.Errorf("ToSRGB() = %s, want %s", got, tt.want)
			}
		})
	}

	if !FormatBC1UNormSRGB.IsSRGB() || FormatBC1UNorm.IsSRGB() {
		t.Error("IsSRGB mismatch for BC1")
	}
	if PixelFormat(999).String() != "Unknown(999)" {
		t.Errorf("unexpected name %q", PixelFormat(999).String())
	}
}

func TestPixelFormat_Geometry(t *testing.T) {
	if got := FormatBC1UNorm.MinStride(10); got != 24 {
		t.Errorf("BC1 stride for width 10 = %d, want 24", got)
	}
	if got := FormatBC2UNorm.RowCount(9); got != 3 {
		t.Errorf("BC2 rows for height 9 = %d, want 3", got)
	}
	if got := FormatR8G8B8A8UNorm.MinStride(10); got != 40 {
		t.Errorf("RGBA stride for width 10 = %d, want 40", got)
	}
	if got := FormatA8UNorm.RowCount(9); got != 9 {
		t.Errorf("A8 rows for height 9 = %d, want 9", got)
	}
}

func TestDesc_Validate(t *testing.T) {
	tests := []struct {
		name    string
		desc    Desc
		bytes   int
		wantErr error
	}{
		{"ok", Desc{2, 2, FormatR8G8B8A8UNorm, 8}, 16, nil},
		{"padded stride", Desc{2, 2, FormatR8G8B8A8UNorm, 12}, 24, nil},
		{"zero size", Desc{0, 2, FormatR8G8B8A8UNorm, 8}, 16, ErrInvalidDesc},
		{"short stride", Desc{2, 2, FormatR8G8B8A8UNorm, 4}, 16, ErrInvalidDesc},
		{"short data", Desc{2, 2, FormatR8G8B8A8UNorm, 8}, 15, ErrInvalidDesc},
		{"unknown format", Desc{2, 2, PixelFormat(3), 8}, 16, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate(tt.bytes)
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRef_SharedOwnership(t *testing.T) {
	c := NewImageCreator()
	h, err := c.CreateTexture(Desc{1, 1, FormatA8UNorm, 1}, []byte{7})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	cacheRef := NewRef("white.png", h)
	materialRef := cacheRef.Retain()
	if cacheRef.RefCount() != 2 {
		t.Fatalf("expected 2 refs, got %d", cacheRef.RefCount())
	}

	cacheRef.Release()
	if h.(*ImageHandle).Destroyed() {
		t.Fatal("texture destroyed while a material still holds it")
	}

	materialRef.Release()
	if !h.(*ImageHandle).Destroyed() {
		t.Error("texture not destroyed after the last release")
	}
	if c.Live() != 0 {
		t.Errorf("expected 0 live textures, got %d", c.Live())
	}

	var nilRef *Ref
	nilRef.Release()
}

func TestImageCreator_BGRASwizzle(t *testing.T) {
	c := NewImageCreator()
	// 1x2 BGRA with padded stride.
	pixels := []byte{
		1, 2, 3, 4, 0, 0,
		5, 6, 7, 8, 0, 0,
	}
	h, err := c.CreateTexture(Desc{1, 2, FormatB8G8R8A8UNorm, 6}, pixels)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}

	img := h.(*ImageHandle).Image().(*image.RGBA)
	if got := img.RGBAAt(0, 1); got != (color.RGBA{7, 6, 5, 8}) {
		t.Errorf("pixel (0,1) = %v, want {7 6 5 8}", got)
	}
	if h.ID() == "" {
		t.Error("expected a handle ID")
	}
}

func TestImageCreator_RejectsCompressed(t *testing.T) {
	c := NewImageCreator()
	_, err := c.CreateTexture(Desc{4, 4, FormatBC1UNorm, 8}, make([]byte, 8))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if c.Live() != 0 {
		t.Errorf("expected no live textures, got %d", c.Live())
	}
}

// makeTGA builds a 2x2 TGA with the given image type and pixel payload.
func makeTGA(imageType byte, bpp byte, topToBottom bool, payload []byte) []byte {
	header := make([]byte, 18)
	header[2] = imageType
	header[12], header[14] = 2, 2
	header[16] = bpp
	if topToBottom {
		header[17] = 0x20
	}
	return append(header, payload...)
}

func TestDecodeTGA_Uncompressed(t *testing.T) {
	// BGR, bottom-up: first row in file is the bottom row.
	payload := []byte{
		255, 0, 0, 0, 255, 0, // blue, green
		0, 0, 255, 255, 255, 255, // red, white
	}
	img, err := DecodeTGA(makeTGA(TGATypeUncompressed, 24, false, payload))
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}

	if got := img.RGBAAt(0, 1); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("bottom-left = %v, want blue", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("top-left = %v, want red", got)
	}
}

func TestDecodeTGA_RLE(t *testing.T) {
	payload := []byte{
		0x81, 10, 20, 30, 40, // run of 2
		0x01, 1, 2, 3, 4, 5, 6, 7, 8, // 2 raw pixels
	}
	img, err := DecodeTGA(makeTGA(TGATypeRLE, 32, true, payload))
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}

	if got := img.RGBAAt(1, 0); got != (color.RGBA{30, 20, 10, 40}) {
		t.Errorf("(1,0) = %v", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{7, 6, 5, 8}) {
		t.Errorf("(1,1) = %v", got)
	}
}

func TestDecodeTGA_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", make([]byte, 10)},
		{"truncated pixels", makeTGA(TGATypeUncompressed, 24, false, []byte{1, 2, 3})},
		{"truncated rle", makeTGA(TGATypeRLE, 24, false, []byte{0x83})},
		{"bad type", makeTGA(1, 24, false, nil)},
		{"bad depth", makeTGA(TGATypeUncompressed, 16, false, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecode_PNGAndUpload(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.NRGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}

	img, err := Decode("albedo.PNG", buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	desc, pixels := ToRGBA8(img, true)
	if desc.Width != 3 || desc.Height != 2 || desc.Stride != 12 {
		t.Errorf("unexpected desc %+v", desc)
	}
	if desc.Format != FormatR8G8B8A8UNormSRGB {
		t.Errorf("expected sRGB format, got %s", desc.Format)
	}
	if len(pixels) != 24 || pixels[20] != 10 || pixels[21] != 20 {
		t.Errorf("unexpected pixels %v", pixels)
	}

	h, err := Upload(NewImageCreator(), img, false)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if h.Desc().Format != FormatR8G8B8A8UNorm {
		t.Errorf("expected linear format, got %s", h.Desc().Format)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode("noise.png", []byte("not an image")); err == nil {
		t.Error("expected error for garbage input")
	}
}
