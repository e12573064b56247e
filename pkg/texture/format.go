// Package texture describes GPU texture resources, the collaborator that
// creates them, and shared ownership of the resulting handles.
package texture

import "fmt"

// PixelFormat identifies a texel format. Values follow DXGI_FORMAT numbering
// so sprite font files can store them verbatim.
type PixelFormat uint32

// Supported pixel formats.
const (
	FormatUnknown           PixelFormat = 0
	FormatR8G8B8A8UNorm     PixelFormat = 28
	FormatR8G8B8A8UNormSRGB PixelFormat = 29
	FormatR8UNorm           PixelFormat = 61
	FormatA8UNorm           PixelFormat = 65
	FormatBC1UNorm          PixelFormat = 71
	FormatBC1UNormSRGB      PixelFormat = 72
	FormatBC2UNorm          PixelFormat = 74
	FormatBC2UNormSRGB      PixelFormat = 75
	FormatBC3UNorm          PixelFormat = 77
	FormatBC3UNormSRGB      PixelFormat = 78
	FormatB8G8R8A8UNorm     PixelFormat = 87
	FormatB8G8R8A8UNormSRGB PixelFormat = 91
)

var formatNames = map[PixelFormat]string{
	FormatR8G8B8A8UNorm:     "R8G8B8A8_UNORM",
	FormatR8G8B8A8UNormSRGB: "R8G8B8A8_UNORM_SRGB",
	FormatR8UNorm:           "R8_UNORM",
	FormatA8UNorm:           "A8_UNORM",
	FormatBC1UNorm:          "BC1_UNORM",
	FormatBC1UNormSRGB:      "BC1_UNORM_SRGB",
	FormatBC2UNorm:          "BC2_UNORM",
	FormatBC2UNormSRGB:      "BC2_UNORM_SRGB",
	FormatBC3UNorm:          "BC3_UNORM",
	FormatBC3UNormSRGB:      "BC3_UNORM_SRGB",
	FormatB8G8R8A8UNorm:     "B8G8R8A8_UNORM",
	FormatB8G8R8A8UNormSRGB: "B8G8R8A8_UNORM_SRGB",
}

var srgbVariants = map[PixelFormat]PixelFormat{
	FormatR8G8B8A8UNorm: FormatR8G8B8A8UNormSRGB,
	FormatBC1UNorm:      FormatBC1UNormSRGB,
	FormatBC2UNorm:      FormatBC2UNormSRGB,
	FormatBC3UNorm:      FormatBC3UNormSRGB,
	FormatB8G8R8A8UNorm: FormatB8G8R8A8UNormSRGB,
}

// String returns the DXGI-style format name.
func (f PixelFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint32(f))
}

// Known reports whether f is one of the supported formats.
func (f PixelFormat) Known() bool {
	_, ok := formatNames[f]
	return ok
}

// ToSRGB returns the sRGB variant of f, or f itself when it has none.
func (f PixelFormat) ToSRGB() PixelFormat {
	if s, ok := srgbVariants[f]; ok {
		return s
	}
	return f
}

// IsSRGB reports whether f stores gamma-encoded color.
func (f PixelFormat) IsSRGB() bool {
	for _, s := range srgbVariants {
		if s == f {
			return true
		}
	}
	return false
}

// IsCompressed reports whether f is a 4x4 block-compressed format.
func (f PixelFormat) IsCompressed() bool {
	return f >= FormatBC1UNorm && f <= FormatBC3UNormSRGB
}

// BytesPerPixel returns the texel size of uncompressed formats (0 otherwise).
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatR8UNorm, FormatA8UNorm:
		return 1
	case FormatR8G8B8A8UNorm, FormatR8G8B8A8UNormSRGB,
		FormatB8G8R8A8UNorm, FormatB8G8R8A8UNormSRGB:
		return 4
	}
	return 0
}

// blockSize returns the byte size of one 4x4 block of a compressed format.
func (f PixelFormat) blockSize() int {
	switch f {
	case FormatBC1UNorm, FormatBC1UNormSRGB:
		return 8
	case FormatBC2UNorm, FormatBC2UNormSRGB, FormatBC3UNorm, FormatBC3UNormSRGB:
		return 16
	}
	return 0
}

// RowCount returns how many stride-sized rows hold an image of the given
// height (block rows for compressed formats).
func (f PixelFormat) RowCount(height uint32) uint32 {
	if f.IsCompressed() {
		return (height + 3) / 4
	}
	return height
}

// MinStride returns the smallest valid row pitch for the given width.
func (f PixelFormat) MinStride(width uint32) uint32 {
	if f.IsCompressed() {
		return ((width + 3) / 4) * uint32(f.blockSize())
	}
	return width * uint32(f.BytesPerPixel())
}
