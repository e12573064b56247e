// Package binio provides endian-aware binary readers and writers used by the
// binary asset formats.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// Binary I/O errors.
var (
	ErrTruncatedInput = errors.New("truncated input")
	ErrIO             = errors.New("i/o failure")
)

// Reader is a cursor over an in-memory byte buffer.
type Reader struct {
	data  []byte
	off   int
	order binary.ByteOrder
}

// NewReader creates a reader over data using the given byte order.
// A nil order selects big-endian.
func NewReader(data []byte, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.BigEndian
	}
	return &Reader{data: data, order: order}
}

// ReadFile loads the whole file into memory and returns a reader over it.
func ReadFile(path string, order binary.ByteOrder) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}
	return NewReader(data, order), nil
}

// Order returns the byte order of the reader.
func (r *Reader) Order() binary.ByteOrder {
	return r.order
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.off
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int {
	return r.off
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.ReadBytes(n)
	return err
}

// ReadBytes returns the next n bytes and advances the cursor.
//
// The returned slice aliases the reader's buffer. It stays valid only as long
// as that buffer is alive and unmodified; copy it before handing it to code
// that outlives the buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrTruncatedInput, n, r.off, r.Len())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads an unsigned 16-bit integer.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// ReadU32 reads an unsigned 32-bit integer.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// ReadF32 reads an IEEE-754 single precision float.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Read decodes one fixed-size value of type T in the reader's byte order.
func Read[T any](r *Reader) (T, error) {
	var v T
	size := binary.Size(v)
	if size < 0 {
		return v, fmt.Errorf("binio: %T is not a fixed-size type", v)
	}
	buf, err := r.ReadBytes(size)
	if err != nil {
		return v, err
	}
	if _, err := binary.Decode(buf, r.order, &v); err != nil {
		return v, fmt.Errorf("decoding %T: %w", v, err)
	}
	return v, nil
}

// ReadArray decodes count consecutive values of type T.
// The result is a copy and does not alias the reader's buffer.
func ReadArray[T any](r *Reader, count int) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, fmt.Errorf("binio: %T is not a fixed-size type", zero)
	}
	if count < 0 || count > r.Len()/size {
		return nil, fmt.Errorf("%w: %d elements of %d bytes at offset %d, have %d bytes",
			ErrTruncatedInput, count, size, r.off, r.Len())
	}
	buf, err := r.ReadBytes(count * size)
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	if count == 0 {
		return out, nil
	}
	if _, err := binary.Decode(buf, r.order, out); err != nil {
		return nil, fmt.Errorf("decoding []%T: %w", zero, err)
	}
	return out, nil
}

// ReadCount reads a u32 element count and checks that count elements of
// elemSize bytes can still be read.
func (r *Reader) ReadCount(elemSize int) (int, error) {
	n, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if elemSize > 0 && uint64(n)*uint64(elemSize) > uint64(r.Len()) {
		return 0, fmt.Errorf("%w: count %d × %d bytes exceeds remaining %d bytes at offset %d",
			ErrTruncatedInput, n, elemSize, r.Len(), r.off)
	}
	return int(n), nil
}
