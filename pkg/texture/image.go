package texture

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/google/uuid"
)

// ImageCreator is a CPU-side Creator that turns pixel data into image.Image
// values. It backs tools and tests that have no GPU device.
type ImageCreator struct {
	live atomic.Int32
}

// NewImageCreator creates a CPU texture creator.
func NewImageCreator() *ImageCreator {
	return &ImageCreator{}
}

// Live returns the number of created textures not yet destroyed.
func (c *ImageCreator) Live() int {
	return int(c.live.Load())
}

// CreateTexture implements Creator. Block-compressed formats are rejected.
func (c *ImageCreator) CreateTexture(desc Desc, pixels []byte) (Handle, error) {
	if err := desc.Validate(len(pixels)); err != nil {
		return nil, err
	}

	w, h := int(desc.Width), int(desc.Height)
	stride := int(desc.Stride)
	rect := image.Rect(0, 0, w, h)

	var img image.Image
	switch desc.Format {
	case FormatR8G8B8A8UNorm, FormatR8G8B8A8UNormSRGB:
		rgba := image.NewRGBA(rect)
		for y := 0; y < h; y++ {
			copy(rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4], pixels[y*stride:])
		}
		img = rgba
	case FormatB8G8R8A8UNorm, FormatB8G8R8A8UNormSRGB:
		rgba := image.NewRGBA(rect)
		for y := 0; y < h; y++ {
			src := pixels[y*stride:]
			dst := rgba.Pix[y*rgba.Stride:]
			for x := 0; x < w; x++ {
				i := x * 4
				dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
			}
		}
		img = rgba
	case FormatR8UNorm:
		gray := image.NewGray(rect)
		for y := 0; y < h; y++ {
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+w], pixels[y*stride:])
		}
		img = gray
	case FormatA8UNorm:
		alpha := image.NewAlpha(rect)
		for y := 0; y < h; y++ {
			copy(alpha.Pix[y*alpha.Stride:y*alpha.Stride+w], pixels[y*stride:])
		}
		img = alpha
	default:
		return nil, fmt.Errorf("%w: %s has no CPU representation", ErrUnsupportedFormat, desc.Format)
	}

	c.live.Add(1)
	return &ImageHandle{id: uuid.NewString(), desc: desc, img: img, owner: c}, nil
}

// ImageHandle is a texture created by ImageCreator.
type ImageHandle struct {
	id        string
	desc      Desc
	img       image.Image
	owner     *ImageCreator
	destroyed atomic.Bool
}

// ID returns the handle's unique identifier.
func (h *ImageHandle) ID() string { return h.id }

// Desc returns the texture description.
func (h *ImageHandle) Desc() Desc { return h.desc }

// Image returns the decoded texels.
func (h *ImageHandle) Image() image.Image { return h.img }

// Destroyed reports whether Destroy has run.
func (h *ImageHandle) Destroyed() bool { return h.destroyed.Load() }

// Destroy releases the image. Calling it twice is harmless.
func (h *ImageHandle) Destroy() {
	if h.destroyed.CompareAndSwap(false, true) {
		h.img = nil
		h.owner.live.Add(-1)
	}
}
