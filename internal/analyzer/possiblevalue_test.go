package analyzer

import (
	"testing"

	"hydro/internal/value"
)

func TestRangeIncExcExcludesTheUpperBound(t *testing.T) {
	pv := RangeIncExc(value.I32(0), value.I32(10))
	if !pv.Contains(value.I32(0)) {
		t.Fatal("expected the lower bound to be included")
	}
	if pv.Contains(value.I32(10)) {
		t.Fatal("expected the upper bound to be excluded")
	}
	if !pv.Contains(value.I32(5)) {
		t.Fatal("expected a midpoint value to be contained")
	}
}

func TestRangeIncIncIncludesBothBounds(t *testing.T) {
	pv := RangeIncInc(value.I32(0), value.I32(10))
	if !pv.Contains(value.I32(0)) || !pv.Contains(value.I32(10)) {
		t.Fatal("expected both bounds to be included")
	}
}

func TestIntersectOfOverlappingRangesNarrows(t *testing.T) {
	left := RangeIncInc(value.I32(0), value.I32(10))
	right := RangeIncInc(value.I32(5), value.I32(15))

	result := Intersect(left, right)
	if result.Contains(value.I32(3)) {
		t.Fatal("expected values below the overlap to be excluded")
	}
	if !result.Contains(value.I32(7)) {
		t.Fatal("expected a value inside the overlap to be contained")
	}
	if result.Contains(value.I32(12)) {
		t.Fatal("expected values above the overlap to be excluded")
	}
}

func TestIntersectOfDisjointRangesIsEmpty(t *testing.T) {
	left := RangeIncInc(value.I32(0), value.I32(5))
	right := RangeIncInc(value.I32(10), value.I32(15))

	result := Intersect(left, right)
	if result.Contains(value.I32(2)) || result.Contains(value.I32(12)) {
		t.Fatal("expected disjoint ranges to intersect to nothing")
	}
}

func TestUnionOfOverlappingRangesMerges(t *testing.T) {
	left := RangeIncInc(value.I32(0), value.I32(5))
	right := RangeIncInc(value.I32(4), value.I32(10))

	result := Union(left, right)
	if !result.Contains(value.I32(0)) || !result.Contains(value.I32(10)) {
		t.Fatal("expected the union to span both ranges' bounds")
	}
	if len(result.Ranges) != 1 {
		t.Fatalf("expected the overlapping ranges to merge into one, got %d", len(result.Ranges))
	}
}

func TestUnionOfDisjointRangesKeepsBoth(t *testing.T) {
	left := RangeIncInc(value.I32(0), value.I32(2))
	right := RangeIncInc(value.I32(10), value.I32(12))

	result := Union(left, right)
	if len(result.Ranges) != 2 {
		t.Fatalf("expected two disjoint ranges to remain separate, got %d", len(result.Ranges))
	}
	if !result.Contains(value.I32(1)) || !result.Contains(value.I32(11)) {
		t.Fatal("expected both original ranges to still be covered")
	}
	if result.Contains(value.I32(5)) {
		t.Fatal("expected the gap between the ranges to be excluded")
	}
}

func TestComplementExcludesTheOriginalRange(t *testing.T) {
	pv := RangeIncInc(value.I32(0), value.I32(10))
	complement := Complement(pv)

	if complement.Contains(value.I32(5)) {
		t.Fatal("expected a value inside the original range to be excluded from its complement")
	}
	if !complement.Contains(value.I32(-5)) {
		t.Fatal("expected a value below the original range to be in its complement")
	}
	if !complement.Contains(value.I32(15)) {
		t.Fatal("expected a value above the original range to be in its complement")
	}
}
