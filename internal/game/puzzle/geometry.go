package puzzle

import (
	"math"
	"math/rand"
)

// TabSize is the tab depth relative to the shorter side of a piece.
const TabSize = 0.12

// Edge is the shape of one side of a piece
type Edge int8

const (
	EdgeFlat Edge = iota
	EdgeTab
	EdgeSlot
)

func (e Edge) String() string {
	switch e {
	case EdgeTab:
		return "tab"
	case EdgeSlot:
		return "slot"
	default:
		return "flat"
	}
}

// TabPattern decides, for every inner boundary, which side carries the tab.
// Right[r][c] is the boundary between (r,c) and (r,c+1); Bottom[r][c] the
// boundary between (r,c) and (r+1,c). True means the tab belongs to (r,c).
// Entries on the last column of Right and the last row of Bottom are unused.
type TabPattern struct {
	Rows   int
	Cols   int
	Right  [][]bool
	Bottom [][]bool
}

func NewTabPattern(rows, cols int, rng *rand.Rand) TabPattern {
	p := TabPattern{
		Rows:   rows,
		Cols:   cols,
		Right:  make([][]bool, rows),
		Bottom: make([][]bool, rows),
	}
	for r := 0; r < rows; r++ {
		p.Right[r] = make([]bool, cols)
		p.Bottom[r] = make([]bool, cols)
		for c := 0; c < cols; c++ {
			p.Right[r][c] = c < cols-1 && rng.Float64() > 0.5
			p.Bottom[r][c] = r < rows-1 && rng.Float64() > 0.5
		}
	}
	return p
}

// PieceEdges lists a piece's sides clockwise from the top
type PieceEdges struct {
	Top, Right, Bottom, Left Edge
}

// Edges derives a piece's four sides from the shared pattern. Neighbours
// read the same entry, so a tab on one side always meets a slot on the other.
func (p TabPattern) Edges(row, col int) PieceEdges {
	var e PieceEdges
	if col < p.Cols-1 {
		e.Right = pick(p.Right[row][col])
	}
	if col > 0 {
		e.Left = pick(!p.Right[row][col-1])
	}
	if row < p.Rows-1 {
		e.Bottom = pick(p.Bottom[row][col])
	}
	if row > 0 {
		e.Top = pick(!p.Bottom[row-1][col])
	}
	return e
}

func pick(tab bool) Edge {
	if tab {
		return EdgeTab
	}
	return EdgeSlot
}

type Point struct {
	X, Y float64
}

type OpKind int

const (
	OpMoveTo OpKind = iota
	OpLineTo
	OpCubeTo
)

// PathOp is one drawing command. Line and move use Pts[0]; cube uses all three.
type PathOp struct {
	Kind OpKind
	Pts  [3]Point
}

// Path is a closed piece outline
type Path []PathOp

func (p *Path) moveTo(x, y float64) {
	*p = append(*p, PathOp{Kind: OpMoveTo, Pts: [3]Point{{x, y}}})
}

func (p *Path) lineTo(x, y float64) {
	*p = append(*p, PathOp{Kind: OpLineTo, Pts: [3]Point{{x, y}}})
}

func (p *Path) cubeTo(b, c, d Point) {
	*p = append(*p, PathOp{Kind: OpCubeTo, Pts: [3]Point{b, c, d}})
}

// depth returns the signed bump depth along the outward normal.
func depth(e Edge, tab float64) float64 {
	switch e {
	case EdgeTab:
		return tab
	case EdgeSlot:
		return -tab
	default:
		return 0
	}
}

// PiecePath traces the outline of a w×h piece whose top-left corner is at
// (x, y), clockwise. Each non-flat side bends over its middle third by tab.
func PiecePath(x, y, w, h, tab float64, e PieceEdges) Path {
	var p Path
	p.moveTo(x, y)

	if d := depth(e.Top, tab); d != 0 {
		p.lineTo(x+w/3, y)
		p.cubeTo(Point{x + w/3, y - d}, Point{x + w*2/3, y - d}, Point{x + w*2/3, y})
	}
	p.lineTo(x+w, y)

	if d := depth(e.Right, tab); d != 0 {
		p.lineTo(x+w, y+h/3)
		p.cubeTo(Point{x + w + d, y + h/3}, Point{x + w + d, y + h*2/3}, Point{x + w, y + h*2/3})
	}
	p.lineTo(x+w, y+h)

	if d := depth(e.Bottom, tab); d != 0 {
		p.lineTo(x+w*2/3, y+h)
		p.cubeTo(Point{x + w*2/3, y + h + d}, Point{x + w/3, y + h + d}, Point{x + w/3, y + h})
	}
	p.lineTo(x, y+h)

	if d := depth(e.Left, tab); d != 0 {
		p.lineTo(x, y+h*2/3)
		p.cubeTo(Point{x - d, y + h*2/3}, Point{x - d, y + h/3}, Point{x, y + h/3})
	}
	p.lineTo(x, y)

	return p
}

// Bounds returns the box containing every point of the path, control points included.
func (p Path) Bounds() (lo, hi Point) {
	lo = Point{math.Inf(1), math.Inf(1)}
	hi = Point{math.Inf(-1), math.Inf(-1)}
	for _, op := range p {
		n := 1
		if op.Kind == OpCubeTo {
			n = 3
		}
		for _, pt := range op.Pts[:n] {
			lo.X, lo.Y = math.Min(lo.X, pt.X), math.Min(lo.Y, pt.Y)
			hi.X, hi.Y = math.Max(hi.X, pt.X), math.Max(hi.Y, pt.Y)
		}
	}
	return lo, hi
}
