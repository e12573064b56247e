package texture

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Texture errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	ErrInvalidDesc       = errors.New("invalid texture description")
)

// Desc describes a 2D texture's dimensions and memory layout.
type Desc struct {
	Width  uint32
	Height uint32
	Format PixelFormat
	// Stride is the byte distance between rows (block rows when compressed).
	Stride uint32
}

// Rows returns the number of stride-sized rows of pixel data.
func (d Desc) Rows() uint32 {
	return d.Format.RowCount(d.Height)
}

// Validate checks the description against the size of the pixel data.
func (d Desc) Validate(pixelBytes int) error {
	if d.Width == 0 || d.Height == 0 {
		return fmt.Errorf("%w: zero size %dx%d", ErrInvalidDesc, d.Width, d.Height)
	}
	if !d.Format.Known() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, d.Format)
	}
	if minStride := d.Format.MinStride(d.Width); d.Stride < minStride {
		return fmt.Errorf("%w: stride %d below minimum %d for %s",
			ErrInvalidDesc, d.Stride, minStride, d.Format)
	}
	if need := uint64(d.Stride) * uint64(d.Rows()); uint64(pixelBytes) < need {
		return fmt.Errorf("%w: %d bytes of pixel data, need %d",
			ErrInvalidDesc, pixelBytes, need)
	}
	return nil
}

// Handle is a created texture resource.
type Handle interface {
	ID() string
	Desc() Desc
	Destroy()
}

// Creator uploads pixel data and returns a texture handle.
// Implementations run synchronously and either succeed or fail before
// returning; callers do not retry.
type Creator interface {
	CreateTexture(desc Desc, pixels []byte) (Handle, error)
}

// Ref is a reference-counted, shared texture handle. The underlying handle is
// destroyed when the last reference is released.
type Ref struct {
	name   string
	handle Handle
	refs   atomic.Int32
}

// NewRef wraps h with a reference count of one.
func NewRef(name string, h Handle) *Ref {
	r := &Ref{name: name, handle: h}
	r.refs.Store(1)
	return r
}

// Name returns the source name (usually the file path) of the texture.
func (r *Ref) Name() string {
	return r.name
}

// Handle returns the underlying texture handle.
func (r *Ref) Handle() Handle {
	return r.handle
}

// RefCount returns the current number of holders.
func (r *Ref) RefCount() int {
	return int(r.refs.Load())
}

// Retain adds a holder and returns r for chaining.
func (r *Ref) Retain() *Ref {
	r.refs.Add(1)
	return r
}

// Release drops a holder, destroying the texture when none remain.
// Releasing a nil Ref is a no-op.
func (r *Ref) Release() {
	if r == nil {
		return
	}
	switch n := r.refs.Add(-1); {
	case n == 0:
		r.handle.Destroy()
	case n < 0:
		panic(fmt.Sprintf("texture %q released more times than retained", r.name))
	}
}
