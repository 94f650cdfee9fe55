package derive

import "testing"

// gridRecords builds a rows×cols record set with the given cells blocked.
func gridRecords(rows, cols int, blocked ...[2]int) []NavRecord {
	isBlocked := make(map[[2]int]bool)
	for _, b := range blocked {
		isBlocked[b] = true
	}
	var records []NavRecord
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			records = append(records, NavRecord{Row: r, Col: c, Walkable: !isBlocked[[2]int{r, c}]})
		}
	}
	return records
}

func TestGridFindPathOpen(t *testing.T) {
	g := NewGrid(gridRecords(5, 5))
	path := g.FindPath([2]int{0, 0}, [2]int{4, 4})
	if path == nil {
		t.Fatal("expected path, got nil")
	}
	if path[0] != [2]int{0, 0} || path[len(path)-1] != [2]int{4, 4} {
		t.Errorf("path endpoints = %v .. %v", path[0], path[len(path)-1])
	}
	if len(path) != 5 {
		t.Errorf("diagonal path length = %d, want 5", len(path))
	}
}

func TestGridFindPathAroundWall(t *testing.T) {
	g := NewGrid(gridRecords(5, 5, [2]int{0, 2}, [2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2}))
	path := g.FindPath([2]int{2, 0}, [2]int{2, 4})
	if path == nil {
		t.Fatal("expected path around wall")
	}
	for _, p := range path {
		if !g.Walkable(p[0], p[1]) {
			t.Errorf("path crosses blocked cell %v", p)
		}
	}
}

func TestGridFindPathBlocked(t *testing.T) {
	tests := []struct {
		name        string
		blocked     [][2]int
		start, goal [2]int
	}{
		{"full wall", [][2]int{{0, 2}, {1, 2}, {2, 2}, {3, 2}, {4, 2}}, [2]int{2, 0}, [2]int{2, 4}},
		{"blocked goal", [][2]int{{4, 4}}, [2]int{0, 0}, [2]int{4, 4}},
		{"out of range", nil, [2]int{0, 0}, [2]int{9, 9}},
		{"corner cut", [][2]int{{0, 1}, {1, 0}}, [2]int{0, 0}, [2]int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(gridRecords(5, 5, tt.blocked...))
			if g.Reachable(tt.start, tt.goal) {
				t.Errorf("expected no path from %v to %v", tt.start, tt.goal)
			}
		})
	}
}

func TestGridCount(t *testing.T) {
	g := NewGrid(gridRecords(4, 4, [2]int{1, 1}, [2]int{2, 2}))
	if g.Rows != 4 || g.Cols != 4 {
		t.Errorf("dims = %dx%d", g.Rows, g.Cols)
	}
	if g.Count() != 14 {
		t.Errorf("count = %d, want 14", g.Count())
	}
}
