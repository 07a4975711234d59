package game

// Coord is a position on the 11x11 board grid. Ordering is row-major so that
// multi-marble selections can be canonicalized by sorting.
type Coord struct {
	Row int
	Col int
}

// Direction is one of the six unit vectors of the hexagonal lattice.
type Direction struct {
	DR int
	DC int
}

// Directions lists every marble move direction on the hexagonal board.
var Directions = [6]Direction{
	{1, 0},
	{1, -1},
	{0, 1},
	{-1, 0},
	{-1, 1},
	{0, -1},
}

// broadsides[i] holds the two companion directions along which a marble row
// may be aligned while moving as a unit in Directions[i].
var broadsides = [6][2]Direction{
	{{1, -1}, {0, 1}},
	{{0, 1}, {-1, 0}},
	{{-1, 0}, {-1, 1}},
	{{-1, 1}, {0, -1}},
	{{0, -1}, {1, 0}},
	{{1, 0}, {1, -1}},
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return Direction{DR: -d.DR, DC: -d.DC}
}

// Step returns the neighboring coordinate in direction d.
func (c Coord) Step(d Direction) Coord {
	return c.StepN(d, 1)
}

// Back returns the neighboring coordinate against direction d.
func (c Coord) Back(d Direction) Coord {
	return c.StepN(d, -1)
}

// StepN returns the coordinate n steps away in direction d. Callers confirm
// via OffBoard sentinel checks before stepping, so a coordinate outside the
// fixed grid indicates a defect and the resulting index will panic at the
// next board access. A malformed direction component panics immediately.
func (c Coord) StepN(d Direction, n int) Coord {
	return Coord{
		Row: c.Row + shift(d.DR, n),
		Col: c.Col + shift(d.DC, n),
	}
}

func shift(delta, n int) int {
	switch delta {
	case 1:
		return n
	case 0:
		return 0
	case -1:
		return -n
	default:
		panic("malformed direction component")
	}
}

// InRange reports whether the coordinate lies strictly inside the grid frame.
// The outer ring is always OffBoard, so any playable cell passes this check.
func (c Coord) InRange() bool {
	return c.Row > 0 && c.Row < maxIndex && c.Col > 0 && c.Col < maxIndex
}

// Less orders coordinates row-major.
func (c Coord) Less(other Coord) bool {
	if c.Row != other.Row {
		return c.Row < other.Row
	}
	return c.Col < other.Col
}
