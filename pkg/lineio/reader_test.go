package lineio

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/meshforge/pkg/binio"
)

// recorder collects the keywords it accepts and rejects everything else.
type recorder struct {
	accept    map[string]bool
	keywords  []string
	values    []float32
	pre, post int
	preErr    error
}

func newRecorder(accept ...string) *recorder {
	r := &recorder{accept: make(map[string]bool)}
	for _, k := range accept {
		r.accept[k] = true
	}
	return r
}

func (r *recorder) Preprocess() error {
	r.pre++
	return r.preErr
}

func (r *recorder) ReadLine(l *Line) error {
	if !r.accept[l.Keyword()] {
		return l.Unrecognized()
	}
	r.keywords = append(r.keywords, l.Keyword())
	for l.HasMore() {
		v, err := l.Float32("value")
		if err != nil {
			return err
		}
		r.values = append(r.values, v)
	}
	return nil
}

func (r *recorder) Postprocess() error {
	r.post++
	return nil
}

func TestReadFromMemory_SkipsCommentsAndBlankLines(t *testing.T) {
	src := "# header\n\n   \nv 1 2 3\r\n  # indented comment\nv 4\n"
	rec := newRecorder("v")

	r := NewReader(Options{})
	if err := r.ReadFromMemory("test.obj", []byte(src), rec); err != nil {
		t.Fatalf("ReadFromMemory failed: %v", err)
	}

	if len(rec.keywords) != 2 {
		t.Errorf("expected 2 lines, got %d", len(rec.keywords))
	}
	if len(rec.values) != 4 || rec.values[3] != 4 {
		t.Errorf("unexpected values %v", rec.values)
	}
	if rec.pre != 1 || rec.post != 1 {
		t.Errorf("expected hooks to run once, got pre=%d post=%d", rec.pre, rec.post)
	}
	if r.LineNumber() != 6 {
		t.Errorf("expected line number 6, got %d", r.LineNumber())
	}
}

func TestReadFromMemory_UnrecognizedIsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := newRecorder("v")

	r := NewReader(Options{Logger: zap.New(core)})
	err := r.ReadFromMemory("test.obj", []byte("v 1\nbogus 7\nv 2\n"), rec)
	if err != nil {
		t.Fatalf("ReadFromMemory failed: %v", err)
	}

	if len(rec.values) != 2 || rec.values[1] != 2 {
		t.Errorf("expected lines after the unknown one to parse, got %v", rec.values)
	}
	if r.Warnings() != 1 {
		t.Errorf("expected 1 warning, got %d", r.Warnings())
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["line"] != int64(2) || fields["token"] != "bogus" {
		t.Errorf("unexpected log fields %v", fields)
	}
}

func TestReadFromMemory_StrictRejectsUnrecognized(t *testing.T) {
	r := NewReader(Options{Strict: true})
	err := r.ReadFromMemory("test.obj", []byte("v 1\nbogus 7\n"), newRecorder("v"))

	if !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
	var lerr *Error
	if !errors.As(err, &lerr) || lerr.Line != 2 {
		t.Errorf("expected error at line 2, got %v", err)
	}
}

func TestReadFromMemory_ParseErrorCarriesPosition(t *testing.T) {
	rec := newRecorder("v")

	r := NewReader(Options{})
	err := r.ReadFromMemory("mesh.obj", []byte("v 1\nv x\nv 3\n"), rec)

	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	var lerr *Error
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if lerr.File != "mesh.obj" || lerr.Line != 2 {
		t.Errorf("expected mesh.obj:2, got %s:%d", lerr.File, lerr.Line)
	}
	if rec.post != 0 {
		t.Error("postprocess must not run after a fatal error")
	}
}

func TestReadFromMemory_PreprocessFailureStopsRead(t *testing.T) {
	sentinel := errors.New("not empty")
	rec := newRecorder("v")
	rec.preErr = sentinel

	r := NewReader(Options{})
	err := r.ReadFromMemory("a.mdl", []byte("v 1\n"), rec)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected preprocess error, got %v", err)
	}
	if len(rec.keywords) != 0 {
		t.Error("no line may be read after a preprocess failure")
	}
}

func TestReadFromMemory_CustomDelimiters(t *testing.T) {
	rec := newRecorder("v")

	r := NewReader(Options{Delimiters: ",;"})
	if err := r.ReadFromMemory("csv", []byte("v,1;2,3\n"), rec); err != nil {
		t.Fatalf("ReadFromMemory failed: %v", err)
	}
	if len(rec.values) != 3 {
		t.Errorf("expected 3 values, got %v", rec.values)
	}
}

func TestReadFile_Missing(t *testing.T) {
	r := NewReader(Options{})
	err := r.ReadFile(filepath.Join(t.TempDir(), "missing.obj"), newRecorder())
	if !errors.Is(err, binio.ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
}

func TestLine_Accessors(t *testing.T) {
	l := NewLine(3, "submodel", "arm", "12", "-4", "on", "0.5", "0.25", "1")

	if l.Keyword() != "submodel" || l.Number() != 3 {
		t.Fatalf("unexpected keyword/number %q/%d", l.Keyword(), l.Number())
	}
	if s, err := l.String("name"); err != nil || s != "arm" {
		t.Errorf("String = %q, %v", s, err)
	}
	if u, err := l.Uint32("start"); err != nil || u != 12 {
		t.Errorf("Uint32 = %d, %v", u, err)
	}
	if i, err := l.Int("offset"); err != nil || i != -4 {
		t.Errorf("Int = %d, %v", i, err)
	}
	if b, err := l.Bool("flag"); err != nil || !b {
		t.Errorf("Bool = %v, %v", b, err)
	}
	if v, err := l.Vec3("scale"); err != nil || v != [3]float32{0.5, 0.25, 1} {
		t.Errorf("Vec3 = %v, %v", v, err)
	}
	if _, err := l.String("extra"); !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse for missing token, got %v", err)
	}
}

func TestLine_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name string
		read func(l *Line) error
	}{
		{"float", func(l *Line) error { _, err := l.Float32("x"); return err }},
		{"uint", func(l *Line) error { _, err := l.Uint32("x"); return err }},
		{"int", func(l *Line) error { _, err := l.Int("x"); return err }},
		{"bool", func(l *Line) error { _, err := l.Bool("x"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.read(NewLine(1, "k", "abc")); !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}
