package window

import (
	"math"
	"testing"
)

func TestGenerateShapes(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		n    int
		want []float64
	}{
		{name: "rectangular", typ: TypeRectangular, n: 4, want: []float64{1, 1, 1, 1}},
		{name: "hann", typ: TypeHann, n: 5, want: []float64{0, 0.5, 1, 0.5, 0}},
		{name: "hamming", typ: TypeHamming, n: 3, want: []float64{0.08, 1, 0.08}},
		{name: "blackman", typ: TypeBlackman, n: 3, want: []float64{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.typ, tt.n)
			checkGolden(t, got, tt.want, 1e-12)
		})
	}
}

func TestPeriodicDiffersFromSymmetric(t *testing.T) {
	sym := Generate(TypeHann, 8)
	per := Generate(TypeHann, 8, WithPeriodic())

	if almostEqual(sym[7], per[7], 1e-12) {
		t.Fatalf("periodic and symmetric windows should differ at the last sample")
	}

	if per[0] != 0 || !almostEqual(per[4], 1, 1e-12) {
		t.Fatalf("unexpected periodic hann: %v", per)
	}
}

func TestNormalizeSumsToLength(t *testing.T) {
	for _, n := range []int{4, 64, 2048} {
		w := Generate(TypeHann, n, WithNormalize())

		sum := 0.0
		for _, v := range w {
			sum += v
		}

		if !almostEqual(sum, float64(n), 1e-9) {
			t.Fatalf("n=%d: sum = %v, want %v", n, sum, n)
		}
	}
}

func TestKaiserBetaZeroIsRectangular(t *testing.T) {
	w, err := Kaiser(16, 0)
	if err != nil {
		t.Fatalf("Kaiser: %v", err)
	}

	for i, v := range w {
		if v != 1 {
			t.Fatalf("w[%d] = %v, want 1", i, v)
		}
	}

	if _, err := Kaiser(16, -1); err == nil {
		t.Fatal("expected error for negative beta")
	}
}

func TestTableApplyInPlace(t *testing.T) {
	tbl, err := NewTable(TypeHann, 5)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	buf := []float64{2, 2, 2, 2, 2, 7}
	if err := tbl.ApplyInPlace(buf); err != nil {
		t.Fatalf("ApplyInPlace: %v", err)
	}

	checkGolden(t, buf, []float64{0, 1, 2, 1, 0, 7}, 1e-12)

	if err := tbl.ApplyInPlace(make([]float64, 3)); err == nil {
		t.Fatal("expected error for short buffer")
	}

	if _, err := NewTable(TypeHann, 0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestTableDoesNotAllocate(t *testing.T) {
	tbl, err := NewTable(TypeBlackmanHarris, 2048, WithPeriodic())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	buf := make([]float64, 2048)
	allocs := testing.AllocsPerRun(50, func() {
		_ = tbl.ApplyInPlace(buf)
	})

	if allocs != 0 {
		t.Fatalf("ApplyInPlace allocated %v times", allocs)
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("expected nil, got %v", w)
	}

	if _, err := Hann(-3); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func checkGolden(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range want {
		if !almostEqual(got[i], want[i], tol) {
			t.Fatalf("index %d: got %.15f, want %.15f", i, got[i], want[i])
		}
	}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
