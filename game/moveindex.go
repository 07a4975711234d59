package game

import (
	"fmt"
	"sync"
)

// moveKey identifies a move shape: the marbles that change position, given by
// their canonically sorted source coordinates, plus the travel direction. For
// in-line moves only the rear marble of the line is keyed, since the line
// ahead of it is implied by the board.
type moveKey struct {
	coords [marbleRow]Coord
	count  uint8
	dir    Direction
}

var (
	moveIndexOnce sync.Once
	moveIndex     map[moveKey]int
)

// buildMoveIndex enumerates every move shape the generator can produce, in a
// fixed order, and assigns each a stable integer id. Single-marble moves and
// in-line moves share one key space (rear coordinate plus direction);
// broadside rows of two and three marbles are keyed by the full row.
func buildMoveIndex() {
	moveIndex = make(map[moveKey]int, 61*6*3)
	next := 0
	assign := func(key moveKey) {
		if _, ok := moveIndex[key]; !ok {
			moveIndex[key] = next
			next++
		}
	}

	for r := 1; r < maxIndex; r++ {
		for c := 1; c < maxIndex; c++ {
			if EmptyBoard[r][c] != Empty {
				continue
			}
			for _, dir := range Directions {
				assign(makeMoveKey([]Coord{{r, c}}, dir))
			}
		}
	}

	for m, dir := range Directions {
		for _, side := range broadsides[m] {
			for r := 1; r < maxIndex; r++ {
				for c := 1; c < maxIndex; c++ {
					first := Coord{r, c}
					if EmptyBoard[r][c] != Empty {
						continue
					}
					second := first.Step(side)
					if !playable(second) {
						continue
					}
					assign(makeMoveKey([]Coord{first, second}, dir))
					third := second.Step(side)
					if !playable(third) {
						continue
					}
					assign(makeMoveKey([]Coord{first, second, third}, dir))
				}
			}
		}
	}
}

func playable(c Coord) bool {
	return c.InRange() && EmptyBoard[c.Row][c.Col] == Empty
}

func makeMoveKey(coords []Coord, dir Direction) moveKey {
	if len(coords) == 0 || len(coords) > marbleRow {
		panic("move shape must cover 1 to 3 marbles")
	}
	key := moveKey{count: uint8(len(coords)), dir: dir}
	copy(key.coords[:], coords)
	// canonicalize by row-major insertion sort
	for i := 1; i < len(coords); i++ {
		for j := i; j > 0 && key.coords[j].Less(key.coords[j-1]); j-- {
			key.coords[j], key.coords[j-1] = key.coords[j-1], key.coords[j]
		}
	}
	return key
}

// moveID returns the stable id for the move shape. Generation and lookup are
// always paired, so a missing key indicates a defect in move generation.
func moveID(coords []Coord, dir Direction) int {
	moveIndexOnce.Do(buildMoveIndex)
	id, ok := moveIndex[makeMoveKey(coords, dir)]
	if !ok {
		panic(fmt.Sprintf("unknown move shape %v towards %v", coords, dir))
	}
	return id
}

// MoveCount returns the size of the move-id space. Oracle policy vectors are
// indexed by these ids.
func MoveCount() int {
	moveIndexOnce.Do(buildMoveIndex)
	return len(moveIndex)
}
