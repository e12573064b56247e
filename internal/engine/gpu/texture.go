package gpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/texture"
)

// S3TC enums from EXT_texture_compression_s3tc and EXT_texture_sRGB.
const (
	compressedRGBAS3TCDXT1      = 0x83F1
	compressedRGBAS3TCDXT3      = 0x83F2
	compressedRGBAS3TCDXT5      = 0x83F3
	compressedSRGBAlphaS3TCDXT1 = 0x8C4D
	compressedSRGBAlphaS3TCDXT3 = 0x8C4E
	compressedSRGBAlphaS3TCDXT5 = 0x8C4F
)

// ErrGL is returned when the driver reports an error during upload.
var ErrGL = errors.New("opengl error")

// glFormat is the GL upload description of a pixel format.
type glFormat struct {
	internal   uint32
	format     uint32
	xtype      uint32
	compressed bool
	alphaOnly  bool
}

func lookupFormat(f texture.PixelFormat) (glFormat, error) {
	switch f {
	case texture.FormatR8G8B8A8UNorm:
		return glFormat{internal: gl.RGBA8, format: gl.RGBA, xtype: gl.UNSIGNED_BYTE}, nil
	case texture.FormatR8G8B8A8UNormSRGB:
		return glFormat{internal: gl.SRGB8_ALPHA8, format: gl.RGBA, xtype: gl.UNSIGNED_BYTE}, nil
	case texture.FormatB8G8R8A8UNorm:
		return glFormat{internal: gl.RGBA8, format: gl.BGRA, xtype: gl.UNSIGNED_BYTE}, nil
	case texture.FormatB8G8R8A8UNormSRGB:
		return glFormat{internal: gl.SRGB8_ALPHA8, format: gl.BGRA, xtype: gl.UNSIGNED_BYTE}, nil
	case texture.FormatR8UNorm:
		return glFormat{internal: gl.R8, format: gl.RED, xtype: gl.UNSIGNED_BYTE}, nil
	case texture.FormatA8UNorm:
		return glFormat{internal: gl.R8, format: gl.RED, xtype: gl.UNSIGNED_BYTE, alphaOnly: true}, nil
	case texture.FormatBC1UNorm:
		return glFormat{internal: compressedRGBAS3TCDXT1, compressed: true}, nil
	case texture.FormatBC1UNormSRGB:
		return glFormat{internal: compressedSRGBAlphaS3TCDXT1, compressed: true}, nil
	case texture.FormatBC2UNorm:
		return glFormat{internal: compressedRGBAS3TCDXT3, compressed: true}, nil
	case texture.FormatBC2UNormSRGB:
		return glFormat{internal: compressedSRGBAlphaS3TCDXT3, compressed: true}, nil
	case texture.FormatBC3UNorm:
		return glFormat{internal: compressedRGBAS3TCDXT5, compressed: true}, nil
	case texture.FormatBC3UNormSRGB:
		return glFormat{internal: compressedSRGBAlphaS3TCDXT5, compressed: true}, nil
	}
	return glFormat{}, fmt.Errorf("%w: %s", texture.ErrUnsupportedFormat, f)
}

// packRows copies stride-spaced rows into a tightly packed buffer. It
// returns pixels unchanged when they are already tight.
func packRows(desc texture.Desc, pixels []byte) []byte {
	tight := desc.Format.MinStride(desc.Width)
	rows := desc.Rows()
	if desc.Stride == tight {
		return pixels[:tight*rows]
	}
	out := make([]byte, tight*rows)
	for y := uint32(0); y < rows; y++ {
		copy(out[y*tight:(y+1)*tight], pixels[y*desc.Stride:])
	}
	return out
}

// TextureCreator uploads textures to the current GL context. Textures may
// be destroyed from any goroutine; their GL names are queued and deleted
// by Collect on the context's goroutine.
type TextureCreator struct {
	log     *zap.Logger
	created atomic.Int64

	mu      sync.Mutex
	pending []uint32
}

var _ texture.Creator = (*TextureCreator)(nil)

// CreateTexture implements texture.Creator.
func (c *TextureCreator) CreateTexture(desc texture.Desc, pixels []byte) (texture.Handle, error) {
	if err := desc.Validate(len(pixels)); err != nil {
		return nil, err
	}
	c.Collect()
	f, err := lookupFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	data := packRows(desc, pixels)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	w, h := int32(desc.Width), int32(desc.Height)
	if f.compressed {
		gl.CompressedTexImage2D(gl.TEXTURE_2D, 0, f.internal, w, h, 0,
			int32(len(data)), unsafe.Pointer(&data[0]))
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, int32(f.internal), w, h, 0,
			f.format, f.xtype, unsafe.Pointer(&data[0]))
	}
	if f.alphaOnly {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_R, gl.ONE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_G, gl.ONE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_B, gl.ONE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_A, gl.RED)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return nil, fmt.Errorf("%w: 0x%04X uploading %dx%d %s", ErrGL, code, desc.Width, desc.Height, desc.Format)
	}

	c.created.Add(1)
	c.log.Debug("texture uploaded",
		zap.Uint32("id", id),
		zap.Stringer("format", desc.Format),
		zap.Uint32("width", desc.Width),
		zap.Uint32("height", desc.Height))
	return &Texture{id: id, desc: desc, owner: c}, nil
}

// Created returns the number of successful uploads.
func (c *TextureCreator) Created() int64 {
	return c.created.Load()
}

func (c *TextureCreator) queueDelete(id uint32) {
	c.mu.Lock()
	c.pending = append(c.pending, id)
	c.mu.Unlock()
}

func (c *TextureCreator) takePending() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := c.pending
	c.pending = nil
	return ids
}

// Collect deletes textures destroyed since the last call. It must run on
// the context's goroutine.
func (c *TextureCreator) Collect() {
	ids := c.takePending()
	if len(ids) == 0 {
		return
	}
	gl.DeleteTextures(int32(len(ids)), &ids[0])
	c.log.Debug("textures deleted", zap.Int("count", len(ids)))
}

// Texture is a GL texture object.
type Texture struct {
	id    uint32
	desc  texture.Desc
	owner *TextureCreator
	freed atomic.Bool
}

// GLID returns the GL texture name.
func (t *Texture) GLID() uint32 { return t.id }

// ID implements texture.Handle.
func (t *Texture) ID() string { return fmt.Sprintf("gl:%d", t.id) }

// Desc implements texture.Handle.
func (t *Texture) Desc() texture.Desc { return t.desc }

// Destroy queues the GL texture for deletion. It is safe to call from any
// goroutine and more than once.
func (t *Texture) Destroy() {
	if t.freed.Swap(true) {
		return
	}
	t.owner.queueDelete(t.id)
}
