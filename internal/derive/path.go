package derive

import (
	"container/heap"
)

// Grid is a dense walkability lookup built from nav records.
type Grid struct {
	Rows, Cols int
	walkable   []bool
}

// NewGrid indexes records by (row, col). Cells absent from records are
// treated as blocked.
func NewGrid(records []NavRecord) *Grid {
	g := &Grid{}
	for _, r := range records {
		g.Rows = max(g.Rows, r.Row+1)
		g.Cols = max(g.Cols, r.Col+1)
	}
	g.walkable = make([]bool, g.Rows*g.Cols)
	for _, r := range records {
		g.walkable[r.Row*g.Cols+r.Col] = r.Walkable
	}
	return g
}

// Walkable reports whether the cell exists and is walkable.
func (g *Grid) Walkable(row, col int) bool {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return false
	}
	return g.walkable[row*g.Cols+col]
}

// Count returns the number of walkable cells.
func (g *Grid) Count() int {
	n := 0
	for _, w := range g.walkable {
		if w {
			n++
		}
	}
	return n
}

type pathNode struct {
	row, col int
	g, f     float32
	parent   *pathNode
	index    int
}

type openSet []*pathNode

func (h openSet) Len() int           { return len(h) }
func (h openSet) Less(i, j int) bool { return h[i].f < h[j].f }
func (h openSet) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *openSet) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *openSet) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*h = old[:len(old)-1]
	return n
}

// 8-connected neighbourhood; odd entries are diagonal.
var neighbours = [8][2]int{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

const diagonalCost = 1.414

// FindPath returns the cells of a shortest 8-connected route from start to
// goal, both inclusive, as [row, col] pairs. Diagonal steps may not cut
// blocked corners. It returns nil when either end is blocked or no route
// exists.
func (g *Grid) FindPath(start, goal [2]int) [][2]int {
	if !g.Walkable(start[0], start[1]) || !g.Walkable(goal[0], goal[1]) {
		return nil
	}

	open := &openSet{}
	nodes := make(map[int]*pathNode)
	closed := make(map[int]bool)

	first := &pathNode{row: start[0], col: start[1], f: octile(start, goal)}
	heap.Push(open, first)
	nodes[g.key(start[0], start[1])] = first

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		if cur.row == goal[0] && cur.col == goal[1] {
			return cur.path()
		}
		closed[g.key(cur.row, cur.col)] = true

		for i, d := range neighbours {
			nr, nc := cur.row+d[0], cur.col+d[1]
			if !g.Walkable(nr, nc) || closed[g.key(nr, nc)] {
				continue
			}
			cost := float32(1)
			if i%2 == 1 {
				if !g.Walkable(cur.row+d[0], cur.col) || !g.Walkable(cur.row, cur.col+d[1]) {
					continue
				}
				cost = diagonalCost
			}

			gScore := cur.g + cost
			n, seen := nodes[g.key(nr, nc)]
			switch {
			case !seen:
				n = &pathNode{row: nr, col: nc, g: gScore, parent: cur}
				n.f = gScore + octile([2]int{nr, nc}, goal)
				nodes[g.key(nr, nc)] = n
				heap.Push(open, n)
			case gScore < n.g:
				n.f += gScore - n.g
				n.g = gScore
				n.parent = cur
				heap.Fix(open, n.index)
			}
		}
	}
	return nil
}

// Reachable reports whether a path exists between two cells.
func (g *Grid) Reachable(start, goal [2]int) bool {
	return g.FindPath(start, goal) != nil
}

func (g *Grid) key(row, col int) int {
	return row*g.Cols + col
}

func (n *pathNode) path() [][2]int {
	var out [][2]int
	for ; n != nil; n = n.parent {
		out = append(out, [2]int{n.row, n.col})
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func octile(a, b [2]int) float32 {
	dr := a[0] - b[0]
	if dr < 0 {
		dr = -dr
	}
	dc := a[1] - b[1]
	if dc < 0 {
		dc = -dc
	}
	lo, hi := min(dr, dc), max(dr, dc)
	return float32(lo)*diagonalCost + float32(hi-lo)
}
