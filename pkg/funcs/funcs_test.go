package funcs

import (
	"math"
	"sort"
	"testing"
)

func TestLookupCaseInsensitive(t *testing.T) {
	for _, name := range []string{"sin", "SIN", "Sin", "sIn"} {
		t.Run(name, func(t *testing.T) {
			f, ok := Lookup(name)
			if !ok {
				t.Fatalf("expected %q to resolve", name)
			}
			if f.Name != "sin" || f.Arity != 1 {
				t.Errorf("got %q arity %d, want sin arity 1", f.Name, f.Arity)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("frobnicate"); ok {
		t.Error("unknown names must not resolve; they lex as variables")
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		args []float64
		want float64
	}{
		{"sin", []float64{math.Pi / 2}, 1},
		{"cos", []float64{0}, 1},
		{"ln", []float64{math.E}, 1},
		{"log", []float64{100}, 2},
		{"log10", []float64{100}, 2},
		{"log2", []float64{8}, 3},
		{"sqrt", []float64{81}, 9},
		{"cbrt", []float64{27}, 3},
		{"abs", []float64{-3.5}, 3.5},
		{"exp", []float64{0}, 1},
		{"floor", []float64{2.9}, 2},
		{"ceil", []float64{2.1}, 3},
		{"round", []float64{2.5}, 3},
		{"trunc", []float64{-2.7}, -2},
		{"max", []float64{1, 2}, 2},
		{"min", []float64{1, 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Lookup(tt.name)
			if !ok {
				t.Fatalf("function %q not registered", tt.name)
			}
			got, err := f.Apply(tt.args)
			if err != nil {
				t.Fatalf("apply error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyArity(t *testing.T) {
	f, _ := Lookup("max")
	if _, err := f.Apply([]float64{1}); err == nil {
		t.Error("max with one argument should fail")
	}
	g, _ := Lookup("sin")
	if _, err := g.Apply([]float64{1, 2}); err == nil {
		t.Error("sin with two arguments should fail")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
	want := map[string]bool{"sin": true, "max": true, "min": true, "ln": true, "sqrt": true}
	for _, n := range names {
		delete(want, n)
	}
	if len(want) != 0 {
		t.Errorf("missing names: %v", want)
	}
}
