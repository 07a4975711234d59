package game

// Size is the number of rows and columns of every board representation.
const Size = 11

const maxIndex = Size - 1

// Cell values of a board position.
const (
	Empty    int8 = 0
	White    int8 = 1
	Black    int8 = 2
	OffBoard int8 = 3
)

// Board is a full board position. It is a value type: boards compare by
// content and may be used as map keys.
type Board [Size][Size]int8

const (
	// MaxMarbles is the maximum number of marbles per side.
	MaxMarbles = 14
	// LossDefeat is the number of marbles a side loses to suffer defeat.
	LossDefeat = 6
	// NoLossDraw is the number of turns without a capture that forces a draw.
	NoLossDraw = 50
	// RepsToDraw is the number of repetitions of a position that forces a draw.
	RepsToDraw = 3

	// marbleRow is the maximum number of marbles moving together.
	marbleRow = 3
)

// EmptyBoard is the board without marbles. The OffBoard frame and corner cuts
// form the hexagon of 61 playable cells.
var EmptyBoard = Board{
	{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	{3, 3, 3, 3, 3, 0, 0, 0, 0, 0, 3},
	{3, 3, 3, 3, 0, 0, 0, 0, 0, 0, 3},
	{3, 3, 3, 0, 0, 0, 0, 0, 0, 0, 3},
	{3, 3, 0, 0, 0, 0, 0, 0, 0, 0, 3},
	{3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3},
	{3, 0, 0, 0, 0, 0, 0, 0, 0, 3, 3},
	{3, 0, 0, 0, 0, 0, 0, 0, 3, 3, 3},
	{3, 0, 0, 0, 0, 0, 0, 3, 3, 3, 3},
	{3, 0, 0, 0, 0, 0, 3, 3, 3, 3, 3},
	{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
}

// BelgianDaisy is the standard competitive opening position.
var BelgianDaisy = Board{
	{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
	{3, 3, 3, 3, 3, 1, 1, 0, 2, 2, 3},
	{3, 3, 3, 3, 1, 1, 1, 2, 2, 2, 3},
	{3, 3, 3, 0, 1, 1, 0, 2, 2, 0, 3},
	{3, 3, 0, 0, 0, 0, 0, 0, 0, 0, 3},
	{3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3},
	{3, 0, 0, 0, 0, 0, 0, 0, 0, 3, 3},
	{3, 0, 2, 2, 0, 1, 1, 0, 3, 3, 3},
	{3, 2, 2, 2, 1, 1, 1, 3, 3, 3, 3},
	{3, 2, 2, 0, 1, 1, 3, 3, 3, 3, 3},
	{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3},
}

// Validate reports whether b is a legal board position: the OffBoard pattern
// matches the empty-board template, no cell carries an unknown value, and
// neither side exceeds MaxMarbles.
func Validate(b Board) bool {
	whites, blacks := 0, 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if EmptyBoard[r][c] == OffBoard {
				if b[r][c] != OffBoard {
					return false
				}
				continue
			}
			switch b[r][c] {
			case Empty:
			case White:
				whites++
			case Black:
				blacks++
			default:
				return false
			}
		}
	}
	return whites <= MaxMarbles && blacks <= MaxMarbles
}

// CountCells counts the cells of b holding the given value.
func CountCells(b Board, value int8) int {
	count := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] == value {
				count++
			}
		}
	}
	return count
}

// Rotate turns the board by 180 degrees and swaps marble colors, so the
// position reads from the other side's perspective. Rotating twice returns
// the original board.
func Rotate(b Board) Board {
	var rotated Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			rotated[maxIndex-r][maxIndex-c] = switchCell(b[r][c])
		}
	}
	return rotated
}

// SwitchColors swaps marble colors in place without rotating.
func SwitchColors(b Board) Board {
	var switched Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switched[r][c] = switchCell(b[r][c])
		}
	}
	return switched
}

func switchCell(value int8) int8 {
	switch value {
	case White:
		return Black
	case Black:
		return White
	default:
		return value
	}
}

// CoordsByType returns the coordinates of all black marbles, white marbles
// and empty fields of b.
func CoordsByType(b Board) (blacks, whites, empties []Coord) {
	blacks = make([]Coord, 0, MaxMarbles)
	whites = make([]Coord, 0, MaxMarbles)
	// 61 playable cells minus at least 9+8 marbles still on the board
	empties = make([]Coord, 0, 44)
	for r := 1; r < maxIndex; r++ {
		for c := 1; c < maxIndex; c++ {
			switch b[r][c] {
			case Black:
				blacks = append(blacks, Coord{r, c})
			case White:
				whites = append(whites, Coord{r, c})
			case Empty:
				empties = append(empties, Coord{r, c})
			}
		}
	}
	return blacks, whites, empties
}
