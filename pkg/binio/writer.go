package binio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// Writer appends binary values to an in-memory buffer.
type Writer struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

// NewWriter creates a writer using the given byte order (nil = big-endian).
func NewWriter(order binary.ByteOrder) *Writer {
	if order == nil {
		order = binary.BigEndian
	}
	return &Writer{order: order}
}

// Order returns the byte order of the writer.
func (w *Writer) Order() binary.ByteOrder {
	return w.order
}

// Write appends one fixed-size value of type T.
func Write[T any](w *Writer, v T) error {
	if err := binary.Write(&w.buf, w.order, v); err != nil {
		return fmt.Errorf("encoding %T: %w", v, err)
	}
	return nil
}

// WriteArray appends a slice of fixed-size values.
func WriteArray[T any](w *Writer, vs []T) error {
	if len(vs) == 0 {
		return nil
	}
	if err := binary.Write(&w.buf, w.order, vs); err != nil {
		return fmt.Errorf("encoding []%T: %w", vs[0], err)
	}
	return nil
}

// WriteU32 appends an unsigned 32-bit integer.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// WriteFile writes the buffer to path, creating parent directories.
func (w *Writer) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: creating directory for %s: %v", ErrIO, path, err)
	}
	if err := os.WriteFile(path, w.buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}
	return nil
}
