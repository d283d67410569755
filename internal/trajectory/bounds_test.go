package trajectory

import (
	"errors"
	"testing"
)

func TestSpatialBounds_TwoVehicleClip(t *testing.T) {
	d, err := Derive(fixX, fixY, fixID, fixTS)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	b, err := SpatialBounds(d.X, d.Y, d.Length, d.Offset)
	if err != nil {
		t.Fatalf("SpatialBounds: %v", err)
	}

	want := [][4]float64{
		{0, 0, 0, 3}, // object 1: vertical segment
		{5, 0, 5, 0}, // object 2: degenerate single point
	}
	for i, w := range want {
		got := [4]float64{b.X1[i], b.Y1[i], b.X2[i], b.Y2[i]}
		if got != w {
			t.Errorf("trajectory %d bbox = %v, want %v", i, got, w)
		}
	}
}

func TestSpatialBounds_Containment(t *testing.T) {
	x := []float64{3, -2, 7, 0, 1}
	y := []float64{-1, 4, 2, 0, -5}
	length := []int32{5}
	offset := []int32{0}

	b, err := SpatialBounds(x, y, length, offset)
	if err != nil {
		t.Fatalf("SpatialBounds: %v", err)
	}
	for i := range x {
		if x[i] < b.X1[0] || x[i] > b.X2[0] || y[i] < b.Y1[0] || y[i] > b.Y2[0] {
			t.Errorf("point %d (%v, %v) outside bbox (%v, %v, %v, %v)",
				i, x[i], y[i], b.X1[0], b.Y1[0], b.X2[0], b.Y2[0])
		}
	}
	if b.X1[0] != -2 || b.Y1[0] != -5 || b.X2[0] != 7 || b.Y2[0] != 4 {
		t.Errorf("bbox = (%v, %v, %v, %v), want (-2, -5, 7, 4)",
			b.X1[0], b.Y1[0], b.X2[0], b.Y2[0])
	}
}

func TestSpatialBounds_Empty(t *testing.T) {
	b, err := SpatialBounds(nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if len(b.X1) != 0 {
		t.Errorf("expected empty bounds, got %+v", b)
	}
}

func TestSpatialBounds_Validation(t *testing.T) {
	x := []float64{0, 1}
	y := []float64{0, 1}

	if _, err := SpatialBounds(x, y, []int32{3}, []int32{0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("run past end: got %v, want ErrOutOfBounds", err)
	}
	if _, err := SpatialBounds(x, y[:1], []int32{1}, []int32{0}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("mismatched columns: got %v, want ErrInvalidArgument", err)
	}
}
