package mesh

import (
	"errors"
	"testing"
)

func TestLayout_VertexSize(t *testing.T) {
	tests := []struct {
		layout Layout
		want   int
		str    string
	}{
		{Layout{IndexSize: 4}, 12, "P/u32"},
		{Layout{HasNormal: true, IndexSize: 4}, 24, "PN/u32"},
		{Layout{HasTexture: true, IndexSize: 2}, 20, "PT/u16"},
		{Layout{HasNormal: true, HasTexture: true, IndexSize: 4}, 32, "PNT/u32"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if got := tt.layout.VertexSize(); got != tt.want {
				t.Errorf("VertexSize() = %d, want %d", got, tt.want)
			}
			if got := tt.layout.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestLayout_Validate(t *testing.T) {
	for _, size := range []int{0, 1, 3, 8} {
		if err := (Layout{IndexSize: size}).Validate(); !errors.Is(err, ErrInvalidLayout) {
			t.Errorf("index size %d: expected ErrInvalidLayout, got %v", size, err)
		}
	}
	if err := DefaultDescriptor().Validate(); err != nil {
		t.Errorf("default descriptor invalid: %v", err)
	}
}

func TestLayout_Strip(t *testing.T) {
	v := Vertex{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}, UV: [2]float32{0.5, 0.5}}

	got := Layout{HasTexture: true, IndexSize: 4}.Strip(v)
	if got.Normal != ([3]float32{}) {
		t.Errorf("expected normal stripped, got %v", got.Normal)
	}
	if got.UV != v.UV || got.Position != v.Position {
		t.Errorf("expected position and UV kept, got %+v", got)
	}
}

func TestLayout_MaxIndex(t *testing.T) {
	if (Layout{IndexSize: 2}).MaxIndex() != 0xFFFF {
		t.Error("16-bit layout should cap at 0xFFFF")
	}
	if DefaultLayout().MaxIndex() != 0xFFFFFFFF {
		t.Error("32-bit layout should cap at 0xFFFFFFFF")
	}
}
