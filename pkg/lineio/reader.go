// Package lineio provides a tokenizing, line-oriented reader for text asset
// formats such as OBJ, MTL and MDL.
package lineio

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/binio"
	"github.com/Faultbox/meshforge/pkg/encoding"
)

// Line reader errors.
var (
	// ErrParse reports a malformed or missing required token on a
	// recognized line. It aborts the read.
	ErrParse = errors.New("parse error")

	// ErrUnrecognized is returned by handlers for lines whose keyword they
	// do not understand. The reader logs it and moves on unless strict.
	ErrUnrecognized = errors.New("unrecognized token")
)

// Default tokenizer settings.
const (
	DefaultDelimiters = " \t\r"
	DefaultComment    = "#"
)

// Error decorates a fatal error with its source position.
type Error struct {
	File string
	Line int
	Err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Handler receives the lines of one file.
type Handler interface {
	// Preprocess runs once before the first line.
	Preprocess() error
	// ReadLine handles one non-empty, non-comment line.
	ReadLine(line *Line) error
	// Postprocess runs once after the last line.
	Postprocess() error
}

// Options configures a Reader.
type Options struct {
	Delimiters string
	Comment    string
	// Encoding names the source text encoding (empty = UTF-8).
	Encoding string
	// Strict turns unrecognized keywords into fatal errors.
	Strict bool
	Logger *zap.Logger
}

// Reader drives a Handler over the lines of a single source.
// A Reader is meant for one source; create a new one per file.
type Reader struct {
	opts     Options
	log      *zap.Logger
	file     string
	line     int
	warnings int
}

// NewReader creates a line reader.
func NewReader(opts Options) *Reader {
	if opts.Delimiters == "" {
		opts.Delimiters = DefaultDelimiters
	}
	if opts.Comment == "" {
		opts.Comment = DefaultComment
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{opts: opts, log: log}
}

// Filename returns the name of the source being read.
func (r *Reader) Filename() string {
	return r.file
}

// LineNumber returns the 1-based number of the current line.
func (r *Reader) LineNumber() int {
	return r.line
}

// Warnings returns how many lines were skipped as unrecognized.
func (r *Reader) Warnings() int {
	return r.warnings
}

// Delimiters returns the token delimiter set.
func (r *Reader) Delimiters() string {
	return r.opts.Delimiters
}

// ReadFile loads path entirely and feeds its lines to h.
func (r *Reader) ReadFile(path string, h Handler) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{File: path, Err: fmt.Errorf("%w: %v", binio.ErrIO, err)}
	}
	return r.ReadFromMemory(path, data, h)
}

// ReadFromMemory feeds the lines of data to h. name is used for diagnostics.
func (r *Reader) ReadFromMemory(name string, data []byte, h Handler) error {
	r.file = name
	r.line = 0

	text, err := encoding.Decode(data, r.opts.Encoding)
	if err != nil {
		return &Error{File: name, Err: err}
	}

	if err := h.Preprocess(); err != nil {
		return &Error{File: name, Err: err}
	}

	for raw := range strings.Lines(string(text)) {
		r.line++

		tokens := strings.FieldsFunc(raw, r.isDelimiter)
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], r.opts.Comment) {
			continue
		}

		line := &Line{number: r.line, tokens: tokens, pos: 1}
		if err := h.ReadLine(line); err != nil {
			if errors.Is(err, ErrUnrecognized) && !r.opts.Strict {
				r.warnings++
				r.log.Warn("skipping unrecognized line",
					zap.String("file", name),
					zap.Int("line", r.line),
					zap.String("token", tokens[0]))
				continue
			}
			return &Error{File: name, Line: r.line, Err: err}
		}
	}

	if err := h.Postprocess(); err != nil {
		return &Error{File: name, Err: err}
	}
	return nil
}

func (r *Reader) isDelimiter(c rune) bool {
	return c == '\n' || strings.ContainsRune(r.opts.Delimiters, c)
}
