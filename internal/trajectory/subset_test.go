package trajectory

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSubsetByID_FiltersAndOrders(t *testing.T) {
	// Interleaved, unsorted observations from objects 1, 2, 3.
	x := []float64{10, 20, 11, 30, 12, 21}
	y := []float64{1, 2, 1, 3, 1, 2}
	id := []int32{1, 2, 1, 3, 1, 2}
	ts := []int64{300, 100, 100, 50, 200, 200}

	s, err := SubsetByID([]int32{1, 3}, x, y, id, ts)
	if err != nil {
		t.Fatalf("SubsetByID: %v", err)
	}

	if s.Count != 2 {
		t.Errorf("expected 2 distinct ids, got %d", s.Count)
	}
	if diff := cmp.Diff([]int32{1, 1, 1, 3}, s.ID); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{100, 200, 300, 50}, s.Timestamp); diff != "" {
		t.Errorf("timestamps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{11, 12, 10, 30}, s.X); diff != "" {
		t.Errorf("x mismatch (-want +got):\n%s", diff)
	}

	// Every selected observation appears exactly once: counts match.
	wantKept := 0
	for _, v := range id {
		if v == 1 || v == 3 {
			wantKept++
		}
	}
	if len(s.ID) != wantKept {
		t.Errorf("kept %d observations, want %d", len(s.ID), wantKept)
	}
}

func TestSubsetByID_UnmatchedIDs(t *testing.T) {
	x := []float64{1, 2}
	y := []float64{1, 2}
	id := []int32{5, 6}
	ts := []int64{1, 2}

	// id 9 has no observations; count reflects only ids present.
	s, err := SubsetByID([]int32{5, 9}, x, y, id, ts)
	if err != nil {
		t.Fatalf("SubsetByID: %v", err)
	}
	if s.Count != 1 || len(s.ID) != 1 || s.ID[0] != 5 {
		t.Errorf("expected only id 5, got count=%d ids=%v", s.Count, s.ID)
	}
}

func TestSubsetByID_EmptySelection(t *testing.T) {
	x := []float64{1}
	y := []float64{1}
	id := []int32{1}
	ts := []int64{1}

	s, err := SubsetByID(nil, x, y, id, ts)
	if err != nil {
		t.Fatalf("empty selection must not error: %v", err)
	}
	if s.Count != 0 || len(s.X) != 0 {
		t.Errorf("expected empty output, got %+v", s)
	}
}

func TestSubsetByID_DuplicateSelection(t *testing.T) {
	x := []float64{1, 2}
	y := []float64{1, 2}
	id := []int32{4, 4}
	ts := []int64{2, 1}

	// Duplicated selection ids must not duplicate observations.
	s, err := SubsetByID([]int32{4, 4, 4}, x, y, id, ts)
	if err != nil {
		t.Fatalf("SubsetByID: %v", err)
	}
	if len(s.ID) != 2 || s.Count != 1 {
		t.Errorf("expected 2 observations of 1 id, got %d of %d", len(s.ID), s.Count)
	}
}

func TestSubsetByID_LengthMismatch(t *testing.T) {
	_, err := SubsetByID([]int32{1}, []float64{1}, []float64{1, 2}, []int32{1}, []int64{1})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
