package math

import (
	"errors"
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(Vec3{10, 20, 30})
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
	if d := m.TransformDirection(Vec3{1, 2, 3}); d != (Vec3{1, 2, 3}) {
		t.Errorf("TransformDirection should ignore translation, got %v", d)
	}
}

func TestRotateAxis90(t *testing.T) {
	m := RotateAxis(Vec3{0, 0, 1}, math.Pi/2)
	got := m.TransformPoint(Vec3{1, 0, 0})
	if !got.AlmostEqual(Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("RotateAxis z 90: got %v, want (0, 1, 0)", got)
	}
}

func TestRotateAbout(t *testing.T) {
	m := RotateAbout(Vec3{1, 1, 0}, Vec3{0, 0, 1}, math.Pi)
	got := m.TransformPoint(Vec3{2, 1, 5})
	if !got.AlmostEqual(Vec3{0, 1, 5}, 1e-12) {
		t.Errorf("RotateAbout: got %v, want (0, 1, 5)", got)
	}
}

func TestDeterminant(t *testing.T) {
	if d := Scale(2, 3, 4).Determinant(); math.Abs(d-24) > 1e-12 {
		t.Errorf("Determinant = %v, want 24", d)
	}
	if d := Scale(-1, 1, 1).Determinant(); math.Abs(d+1) > 1e-12 {
		t.Errorf("mirror Determinant = %v, want -1", d)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(Vec3{1, 2, 3}).Mul(RotateAxis(Vec3{0, 1, 0}, 0.3)).Mul(Scale(2, 2, 2))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	p := Vec3{4, -5, 6}
	back := inv.TransformPoint(m.TransformPoint(p))
	if !back.AlmostEqual(p, 1e-12) {
		t.Errorf("inverse round trip: got %v, want %v", back, p)
	}
}

func TestInverseSingular(t *testing.T) {
	_, err := Scale(1, 0, 1).Inverse()
	if !errors.Is(err, ErrSingularMatrix) {
		t.Errorf("expected ErrSingularMatrix, got %v", err)
	}
	nan := Identity()
	nan[0] = math.NaN()
	if _, err := nan.Inverse(); !errors.Is(err, ErrSingularMatrix) {
		t.Errorf("expected ErrSingularMatrix for NaN matrix, got %v", err)
	}
}

func TestFromFrame(t *testing.T) {
	m := FromFrame(Vec3{1, 2, 3}, Vec3{0, 1, 0}, Vec3{-1, 0, 0}, Vec3{0, 0, 1})
	if c := m.Column(0); c != (Vec3{0, 1, 0}) {
		t.Errorf("Column(0) = %v", c)
	}
	if tr := m.Translation(); tr != (Vec3{1, 2, 3}) {
		t.Errorf("Translation = %v", tr)
	}
}
