package game

import "sort"

// CoordMoves computes the legal follow-up positions for an explicitly
// selected group of one to three marbles, keyed by the direction the group
// travels. Selections are rejected with an empty result when they hold more
// than three marbles, marbles of the wrong color, coordinates off the
// playable area, or marbles that do not form a straight line. Returned boards
// are in absolute orientation.
func (s *State) CoordMoves(coords []Coord) map[Direction]Board {
	results := make(map[Direction]Board, len(Directions))
	switch len(coords) {
	case 1:
		s.singleCoordMoves(coords[0], results)
	case 2, 3:
		s.multiCoordMoves(coords, results)
	}
	// move generation ran on the color-switched board, switch back for black
	if s.blackToMove {
		for dir, board := range results {
			results[dir] = SwitchColors(board)
		}
	}
	return results
}

func (s *State) singleCoordMoves(start Coord, results map[Direction]Board) {
	if !start.InRange() {
		return
	}
	switched := s.SwitchedBoard()
	if switched[start.Row][start.Col] != White {
		return
	}
	for _, dir := range Directions {
		target := start.Step(dir)
		if switched[target.Row][target.Col] != Empty {
			continue
		}
		board := switched
		board[start.Row][start.Col] = Empty
		board[target.Row][target.Col] = White
		results[dir] = board
	}
}

func (s *State) multiCoordMoves(coords []Coord, results map[Direction]Board) {
	sorted := make([]Coord, len(coords))
	copy(sorted, coords)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	first := sorted[0]
	last := sorted[len(sorted)-1]
	if !first.InRange() || !last.InRange() {
		return
	}
	switched := s.SwitchedBoard()
	for _, sc := range sorted {
		if switched[sc.Row][sc.Col] != White {
			return
		}
	}

	// the selection must form a straight line along one of the axes
	axis, ok := lineAxis(sorted)
	if !ok {
		return
	}

	// advancing towards the axis direction puts the last marble in front,
	// advancing against it puts the first marble in front
	s.inlineMove(switched, last, first, len(sorted), axis, results)
	s.inlineMove(switched, first, last, len(sorted), axis.Opposite(), results)

	for _, dir := range Directions {
		if dir == axis || dir == axis.Opposite() {
			continue
		}
		board := switched
		blocked := false
		for _, marble := range sorted {
			target := marble.Step(dir)
			if switched[target.Row][target.Col] != Empty {
				blocked = true
				break
			}
			board[marble.Row][marble.Col] = Empty
			board[target.Row][target.Col] = White
		}
		if !blocked {
			results[dir] = board
		}
	}
}

// lineAxis returns the direction along which the row-major sorted selection
// forms a contiguous line.
func lineAxis(sorted []Coord) (Direction, bool) {
	for _, dir := range Directions {
		if sorted[0].Step(dir) != sorted[1] {
			continue
		}
		aligned := true
		for i := 2; i < len(sorted); i++ {
			if sorted[i] != sorted[0].StepN(dir, i) {
				aligned = false
				break
			}
		}
		if aligned {
			return dir, true
		}
	}
	return Direction{}, false
}

// inlineMove advances a line of marbles one step along its own axis, pushing
// up to two opposing marbles when the line outnumbers them, including pushes
// off the board edge.
func (s *State) inlineMove(board Board, front, rear Coord, marbles int, dir Direction, results map[Direction]Board) {
	first := front.Step(dir)
	switch board[first.Row][first.Col] {
	case Empty:
		next := board
		next[first.Row][first.Col] = White
		next[rear.Row][rear.Col] = Empty
		results[dir] = next
	case Black:
		second := first.Step(dir)
		switch board[second.Row][second.Col] {
		case Empty:
			next := board
			next[second.Row][second.Col] = Black
			next[first.Row][first.Col] = White
			next[rear.Row][rear.Col] = Empty
			results[dir] = next
		case OffBoard:
			next := board
			next[first.Row][first.Col] = White
			next[rear.Row][rear.Col] = Empty
			results[dir] = next
		case Black:
			if marbles <= 2 {
				return
			}
			third := second.Step(dir)
			switch board[third.Row][third.Col] {
			case Empty:
				next := board
				next[third.Row][third.Col] = Black
				next[first.Row][first.Col] = White
				next[rear.Row][rear.Col] = Empty
				results[dir] = next
			case OffBoard:
				next := board
				next[first.Row][first.Col] = White
				next[rear.Row][rear.Col] = Empty
				results[dir] = next
			}
		}
	}
}

// Differences adds to marked the coordinates at which the given board, stated
// in absolute orientation, deviates from the current position. When the
// opponent moved marbles as part of a three-against-two in-line push, the cell
// of the furthest pushed marble is marked as well even though its occupant
// color did not change; callers seed marked with the moving side's selection
// for that detection to apply.
func (s *State) Differences(board Board, marked map[Coord]struct{}) {
	enemy := Black
	if s.blackToMove {
		enemy = White
	}
	seeded := len(marked)
	enemyMoved := false
	origin := Coord{1, 1}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if board[r][c] == s.board[r][c] {
				continue
			}
			if s.board[r][c] == enemy {
				enemyMoved = true
			}
			if board[r][c] == Empty {
				origin = Coord{r, c}
			}
			marked[Coord{r, c}] = struct{}{}
		}
	}
	if !enemyMoved || seeded != 3 {
		return
	}
	// only the vacated rear cell identifies the line; four steps from it sits
	// the furthest marble of a 3-vs-2 push
	for _, dir := range Directions {
		if _, ok := marked[origin.Step(dir)]; !ok {
			continue
		}
		pushed := origin.StepN(dir, 4)
		if pushed.InRange() && board[pushed.Row][pushed.Col] == enemy {
			marked[pushed] = struct{}{}
		}
		break
	}
}
