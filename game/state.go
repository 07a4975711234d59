package game

import (
	"errors"
)

// Outcome is the result of a game.
type Outcome int8

const (
	Undecided Outcome = iota
	WhiteWins
	BlackWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "white wins"
	case BlackWins:
		return "black wins"
	case Draw:
		return "draw"
	default:
		return "undecided"
	}
}

// Score is the outcome value seen from white's perspective: 1 for a white
// win, -1 for a black win, 0 otherwise.
func (o Outcome) Score() float32 {
	switch o {
	case WhiteWins:
		return 1
	case BlackWins:
		return -1
	default:
		return 0
	}
}

// maxSave is the initial buffer size for follow-up positions and history.
const maxSave = 140

// State is a running Abalone game. It owns the board, the side to move, the
// capture and draw bookkeeping, and the buffer of follow-up positions
// produced by the last LegalMoves call. A State must not be shared between
// goroutines; workers operate on SimCopy clones.
type State struct {
	board         Board
	blackToMove   bool
	nextPositions []Board
	history       []Board
	saveHistory   bool
	repetitions   map[Board]uint8
	turnNumber    int
	noLossTurns   int
	noLossMoves   int
	whiteLoss     int
	blackLoss     int
	outcome       Outcome
	ended         bool
}

// ErrInvalidBoard is returned when a game is constructed from a board that
// fails validation.
var ErrInvalidBoard = errors.New("invalid board position")

// NewState starts a game from the given position. The position can be any
// valid board, not only an opening.
func NewState(board Board) (*State, error) {
	if !Validate(board) {
		return nil, ErrInvalidBoard
	}
	s := &State{
		board:         board,
		blackToMove:   true,
		nextPositions: make([]Board, 0, maxSave),
		history:       make([]Board, 0, maxSave),
		saveHistory:   true,
		repetitions:   make(map[Board]uint8, 150),
		turnNumber:    1,
		whiteLoss:     MaxMarbles - CountCells(board, White),
		blackLoss:     MaxMarbles - CountCells(board, Black),
	}
	s.checkEnded()
	return s, nil
}

// SimCopy clones the state for use by a simulation worker. The copy carries
// all bookkeeping needed to detect termination but drops history retention,
// and shares no mutable storage with the original.
func (s *State) SimCopy() *State {
	repetitions := make(map[Board]uint8, len(s.repetitions))
	for board, count := range s.repetitions {
		repetitions[board] = count
	}
	return &State{
		board:         s.board,
		blackToMove:   s.blackToMove,
		nextPositions: make([]Board, 0, maxSave),
		saveHistory:   false,
		repetitions:   repetitions,
		turnNumber:    s.turnNumber,
		noLossTurns:   s.noLossTurns,
		noLossMoves:   s.noLossMoves,
		whiteLoss:     s.whiteLoss,
		blackLoss:     s.blackLoss,
		outcome:       s.outcome,
		ended:         s.ended,
	}
}

// Board returns the current position in absolute orientation.
func (s *State) Board() Board {
	return s.board
}

// RotatedBoard returns the current position seen from the perspective of the
// side to move: when black is to move the board is rotated and colors are
// swapped, so the mover always plays the white marbles.
func (s *State) RotatedBoard() Board {
	if s.blackToMove {
		return Rotate(s.board)
	}
	return s.board
}

// SwitchedBoard returns the current position with colors swapped when black
// is to move, without rotating, so selection coordinates stay in absolute
// orientation.
func (s *State) SwitchedBoard() Board {
	if s.blackToMove {
		return SwitchColors(s.board)
	}
	return s.board
}

// BlackToMove reports whether black makes the next move.
func (s *State) BlackToMove() bool {
	return s.blackToMove
}

// Ended reports whether the game reached a terminal position.
func (s *State) Ended() bool {
	return s.ended
}

// Outcome returns the game result, Undecided while the game is running.
func (s *State) Outcome() Outcome {
	return s.outcome
}

// Losses returns the number of marbles lost by black and by white.
func (s *State) Losses() (blackLoss, whiteLoss int) {
	return s.blackLoss, s.whiteLoss
}

// TurnNumber returns the number of the move about to be made, starting at 1.
func (s *State) TurnNumber() int {
	return s.turnNumber
}

// History returns the boards reached so far, oldest first. Simulation copies
// retain no history.
func (s *State) History() []Board {
	return s.history
}

// CoordsByType returns marble and empty-field coordinates of the current
// position.
func (s *State) CoordsByType() (blacks, whites, empties []Coord) {
	return CoordsByType(s.board)
}

// LegalMoves computes every legal follow-up position for the side to move.
// It returns the perspective-rotated board the moves were generated on, plus
// the move id for each follow-up. The resulting boards are buffered in the
// same order for retrieval via NextPosition. Positions that would push own
// marbles off the board are not generated.
func (s *State) LegalMoves() (Board, []int) {
	pov := s.RotatedBoard()
	s.nextPositions = s.nextPositions[:0]
	ids := make([]int, 0, maxSave)

	var moved [marbleRow]Coord
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if pov[r][c] != White {
				continue
			}
			pos := Coord{r, c}
			for m, dir := range Directions {
				next := pos.Step(dir)
				switch pov[next.Row][next.Col] {
				case Empty:
					// in-line slide: one or two own marbles behind push the line forward
					rear1 := pos.Back(dir)
					if pov[rear1.Row][rear1.Col] == White {
						ids = append(ids, s.slide(pov, rear1, next, dir))
						rear2 := rear1.Back(dir)
						if pov[rear2.Row][rear2.Col] == White {
							ids = append(ids, s.slide(pov, rear2, next, dir))
						}
					}
				case Black:
					ids = s.pushMoves(pov, pos, next, dir, ids)
				}
				// broadside rows along the two companion directions; the
				// first row entry doubles as the single-marble move and is
				// only emitted for the first companion
				for si, side := range broadsides[m] {
					board := pov
					count := 0
					for b := 0; b < marbleRow; b++ {
						marble := pos.StepN(side, b)
						if pov[marble.Row][marble.Col] != White {
							break
						}
						target := marble.Step(dir)
						if pov[target.Row][target.Col] != Empty {
							break
						}
						board[marble.Row][marble.Col] = Empty
						board[target.Row][target.Col] = White
						moved[b] = marble
						count = b + 1
						if si > 0 && b == 0 {
							continue
						}
						s.nextPositions = append(s.nextPositions, board)
						ids = append(ids, moveID(moved[:count], dir))
					}
				}
			}
		}
	}
	return pov, ids
}

// pushMoves generates the in-line pushes for a white line ending at pos with
// one or two black marbles ahead at next.
func (s *State) pushMoves(pov Board, pos, next Coord, dir Direction, ids []int) []int {
	rear1 := pos.Back(dir)
	if pov[rear1.Row][rear1.Col] != White {
		return ids
	}
	rear2 := rear1.Back(dir)
	target := next.Step(dir)
	switch pov[target.Row][target.Col] {
	case OffBoard:
		// single black marble pushed off the edge
		ids = append(ids, s.slide(pov, rear1, next, dir))
		if pov[rear2.Row][rear2.Col] == White {
			ids = append(ids, s.slide(pov, rear2, next, dir))
		}
	case Empty:
		// single black marble pushed onto an empty cell
		ids = append(ids, s.pushToEmpty(pov, rear1, next, target, dir))
		if pov[rear2.Row][rear2.Col] == White {
			ids = append(ids, s.pushToEmpty(pov, rear2, next, target, dir))
		}
	case Black:
		// two black marbles can only be pushed by three whites
		if pov[rear2.Row][rear2.Col] != White {
			return ids
		}
		beyond := target.Step(dir)
		switch pov[beyond.Row][beyond.Col] {
		case OffBoard:
			ids = append(ids, s.slide(pov, rear2, next, dir))
		case Empty:
			ids = append(ids, s.pushToEmpty(pov, rear2, next, beyond, dir))
		}
	}
	return ids
}

// slide advances the line whose rear marble sits at rear into the cell at
// front. It covers plain slides and pushes off the board edge, where the
// pushed marble simply disappears.
func (s *State) slide(pov Board, rear, front Coord, dir Direction) int {
	pov[rear.Row][rear.Col] = Empty
	pov[front.Row][front.Col] = White
	s.nextPositions = append(s.nextPositions, pov)
	return moveID([]Coord{rear}, dir)
}

// pushToEmpty advances the line whose rear marble sits at rear, moving the
// front-most black marble from first onto the empty cell at target.
func (s *State) pushToEmpty(pov Board, rear, first, target Coord, dir Direction) int {
	pov[rear.Row][rear.Col] = Empty
	pov[first.Row][first.Col] = White
	pov[target.Row][target.Col] = Black
	s.nextPositions = append(s.nextPositions, pov)
	return moveID([]Coord{rear}, dir)
}

// NextPosition returns the buffered follow-up position at the given index of
// the last LegalMoves call. Generation and consumption of indices are always
// paired within one turn, so an out-of-range index is a defect.
func (s *State) NextPosition(index int) Board {
	if index < 0 || index >= len(s.nextPositions) {
		panic("follow-up position index out of range")
	}
	return s.nextPositions[index]
}

// NextPositionCount returns the number of buffered follow-up positions.
func (s *State) NextPositionCount() int {
	return len(s.nextPositions)
}

// Apply confirms a move by replacing the current position with the given
// board, stated from the mover's perspective. It updates loss counters, the
// no-capture clocks, the repetition table and the terminal outcome. The board
// is not checked for reachability.
func (s *State) Apply(next Board) {
	if s.blackToMove {
		next = Rotate(next)
	}
	s.board = next
	s.blackToMove = !s.blackToMove
	s.turnNumber++

	noLoss := true
	if loss := MaxMarbles - CountCells(next, White); loss > s.whiteLoss {
		s.whiteLoss = loss
		noLoss = false
	} else if loss := MaxMarbles - CountCells(next, Black); loss > s.blackLoss {
		s.blackLoss = loss
		noLoss = false
	}

	if noLoss {
		s.noLossMoves++
		// a full turn passed once both sides moved without a capture
		if !s.blackToMove && s.noLossMoves > 1 {
			s.noLossTurns++
		}
	} else {
		s.noLossMoves = 0
		s.noLossTurns = 0
	}

	if s.saveHistory {
		s.history = append(s.history, next)
	}
	s.repetitions[next]++
	s.checkEnded()
}

// ApplyIndex confirms the buffered follow-up position at the given index.
func (s *State) ApplyIndex(index int) {
	s.Apply(s.NextPosition(index))
}

// EndWithResult ends the game with the given outcome, overriding the playing
// rules. Undecided is ignored.
func (s *State) EndWithResult(outcome Outcome) {
	if outcome == Undecided {
		return
	}
	s.outcome = outcome
	s.ended = true
}

func (s *State) checkEnded() {
	switch {
	case s.whiteLoss >= LossDefeat:
		s.outcome = BlackWins
	case s.blackLoss >= LossDefeat:
		s.outcome = WhiteWins
	case s.noLossTurns >= NoLossDraw || s.repetitions[s.board] >= RepsToDraw:
		s.outcome = Draw
	}
	if s.outcome != Undecided {
		s.ended = true
	}
}
