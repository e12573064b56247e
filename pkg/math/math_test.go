package math

import (
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-5

func TestVec3Cross(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if got != (Vec3{0, 0, 1}) {
		t.Errorf("Cross() = %v, want (0, 0, 1)", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 0, 4}.Normalize()
	if !n.ApproxEqual(Vec3{0.6, 0, 0.8}, eps) {
		t.Errorf("Normalize() = %v", n)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("Normalize of zero vector should be zero")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	if m.Mul(Identity()) != m {
		t.Error("M * I should equal M")
	}
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		p    Vec3
		want Vec3
	}{
		{"translate", Translate(Vec3{10, 20, 30}), Vec3{1, 2, 3}, Vec3{11, 22, 33}},
		{"scale", Scale(Vec3{2, 2, 2}), Vec3{1, 2, 3}, Vec3{2, 4, 6}},
		{"rotateY90", RotateY(math32.Pi / 2), Vec3{1, 0, 0}, Vec3{0, 0, -1}},
		{"rotateZ90", RotateZ(math32.Pi / 2), Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"rotateX90", RotateX(math32.Pi / 2), Vec3{0, 1, 0}, Vec3{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.p)
			if !got.ApproxEqual(tt.want, eps) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTRS_Order(t *testing.T) {
	// Scale first, then rotate 90° around Z, then translate.
	m := TRS(Vec3{5, 0, 0}, Vec3{0, 0, math32.Pi / 2}, Vec3{2, 2, 2})
	got := m.TransformPoint(Vec3{1, 0, 0})
	if !got.ApproxEqual(Vec3{5, 2, 0}, eps) {
		t.Errorf("TRS point = %v, want (5, 2, 0)", got)
	}

	dir := m.TransformDirection(Vec3{1, 0, 0})
	if !dir.ApproxEqual(Vec3{0, 2, 0}, eps) {
		t.Errorf("TRS direction = %v, want (0, 2, 0)", dir)
	}
	if m.Translation() != (Vec3{5, 0, 0}) {
		t.Errorf("Translation() = %v", m.Translation())
	}
}
