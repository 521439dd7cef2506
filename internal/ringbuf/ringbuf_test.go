package ringbuf

import "testing"

func TestPushOverwritesOldest(t *testing.T) {
	r := New[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	if got := r.TotalAdded(); got != 5 {
		t.Fatalf("TotalAdded = %d, want 5", got)
	}
	if got := r.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	if got := r.Dropped(); got != 2 {
		t.Fatalf("Dropped = %d, want 2", got)
	}

	want := []int{3, 4, 5}
	got := r.Slice()
	if len(got) != len(want) {
		t.Fatalf("Slice = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Slice = %v, want %v", got, want)
		}
	}
}

func TestCountNeverExceedsCapacity(t *testing.T) {
	cases := []struct {
		name     string
		capacity int
		pushes   int
	}{
		{"empty", 4, 0},
		{"partial", 4, 2},
		{"exact", 4, 4},
		{"wrapped", 4, 11},
		{"clamped_capacity", 0, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New[int](tc.capacity)
			for i := 0; i < tc.pushes; i++ {
				r.Push(i)
			}
			wantCount := tc.pushes
			if wantCount > r.Cap() {
				wantCount = r.Cap()
			}
			if r.Len() != wantCount {
				t.Fatalf("Len = %d, want %d", r.Len(), wantCount)
			}
			if r.TotalAdded() != uint64(tc.pushes) {
				t.Fatalf("TotalAdded = %d, want %d", r.TotalAdded(), tc.pushes)
			}
		})
	}
}

func TestAtBounds(t *testing.T) {
	r := New[string](2)
	r.Push("a")
	r.Push("b")
	r.Push("c")

	if v, ok := r.At(0); !ok || v != "b" {
		t.Fatalf("At(0) = %q, %v, want b, true", v, ok)
	}
	if v, ok := r.At(1); !ok || v != "c" {
		t.Fatalf("At(1) = %q, %v, want c, true", v, ok)
	}
	if _, ok := r.At(2); ok {
		t.Fatalf("At(2) ok = true, want false")
	}
	if _, ok := r.At(-1); ok {
		t.Fatalf("At(-1) ok = true, want false")
	}
}

func TestDoVisitsOldestFirstAndStopsEarly(t *testing.T) {
	r := New[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	var visited []int
	r.Do(func(v int) bool {
		visited = append(visited, v)
		return true
	})
	want := []int{3, 4, 5}
	if len(visited) != len(want) {
		t.Fatalf("Do visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("Do visited %v, want %v", visited, want)
		}
	}

	visited = nil
	r.Do(func(v int) bool {
		visited = append(visited, v)
		return false
	})
	if len(visited) != 1 || visited[0] != 3 {
		t.Fatalf("Do with early stop visited %v, want [3]", visited)
	}
}

func TestClearResetsAccounting(t *testing.T) {
	r := New[int](3)
	for i := 0; i < 7; i++ {
		r.Push(i)
	}
	r.Clear()

	if r.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", r.Len())
	}
	if r.TotalAdded() != 0 {
		t.Fatalf("TotalAdded after Clear = %d, want 0", r.TotalAdded())
	}

	r.Push(42)
	if v, ok := r.At(0); !ok || v != 42 {
		t.Fatalf("At(0) after Clear+Push = %d, %v, want 42, true", v, ok)
	}
}
