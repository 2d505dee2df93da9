package pipeline

import (
	"reflect"
	"testing"
)

func TestBoomerangOrder(t *testing.T) {
	tests := []struct {
		name   string
		frames []string
		want   []string
	}{
		{"two frames", []string{"a", "b"}, []string{"a", "b"}},
		{"three frames", []string{"a", "b", "c"}, []string{"a", "b", "c", "b"}},
		{"four frames", []string{"a", "b", "c", "d"}, []string{"a", "b", "c", "d", "c", "b"}},
		{"six frames", []string{"a", "b", "c", "d", "e", "f"}, []string{"a", "b", "c", "d", "e", "f", "e", "d", "c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BoomerangOrder(tt.frames)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BoomerangOrder(%v) = %v, want %v", tt.frames, got, tt.want)
			}
		})
	}
}

// No frame may ever repeat back-to-back, including across the loop boundary.
func TestBoomerangOrderNoConsecutiveRepeats(t *testing.T) {
	frames := []string{"f0", "f1", "f2", "f3", "f4"}
	order := BoomerangOrder(frames)

	for i := 0; i < len(order); i++ {
		next := order[(i+1)%len(order)]
		if order[i] == next {
			t.Errorf("frame %q repeats consecutively at position %d", order[i], i)
		}
	}

	if want := 2*len(frames) - 2; len(order) != want {
		t.Errorf("len = %d, want %d", len(order), want)
	}
}

func TestBoomerangOrderDoesNotMutateInput(t *testing.T) {
	frames := []string{"a", "b", "c"}
	_ = BoomerangOrder(frames)
	if !reflect.DeepEqual(frames, []string{"a", "b", "c"}) {
		t.Errorf("input mutated: %v", frames)
	}
}
