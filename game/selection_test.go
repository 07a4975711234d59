package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// blackMoverState starts a game with black to move on the given absolute
// position.
func blackMoverState(t *testing.T, board Board) *State {
	t.Helper()
	s, err := NewState(board)
	require.NoError(t, err)
	require.True(t, s.BlackToMove())
	return s
}

func TestCoordMovesSingle(t *testing.T) {
	t.Run("a free marble moves in all six directions", func(t *testing.T) {
		s := blackMoverState(t, marbleBoard(nil, []Coord{{5, 5}}))
		results := s.CoordMoves([]Coord{{5, 5}})
		require.Len(t, results, 6)

		moved, ok := results[Direction{1, 0}]
		require.True(t, ok)
		require.Equal(t, Empty, moved[5][5])
		require.Equal(t, Black, moved[6][5])
	})

	t.Run("rejects a marble of the waiting side", func(t *testing.T) {
		s := blackMoverState(t, marbleBoard([]Coord{{5, 5}}, nil))
		require.Empty(t, s.CoordMoves([]Coord{{5, 5}}))
	})

	t.Run("rejects coordinates off the playable area", func(t *testing.T) {
		s := blackMoverState(t, marbleBoard(nil, []Coord{{5, 5}}))
		require.Empty(t, s.CoordMoves([]Coord{{0, 0}}))
		require.Empty(t, s.CoordMoves([]Coord{{10, 10}}))
	})
}

func TestCoordMovesLine(t *testing.T) {
	t.Run("a free pair moves in-line and broadside", func(t *testing.T) {
		s := blackMoverState(t, marbleBoard(nil, []Coord{{5, 4}, {5, 5}}))
		results := s.CoordMoves([]Coord{{5, 5}, {5, 4}})
		require.Len(t, results, 6)

		forward, ok := results[Direction{0, 1}]
		require.True(t, ok)
		require.Equal(t, Empty, forward[5][4])
		require.Equal(t, Black, forward[5][5])
		require.Equal(t, Black, forward[5][6])

		side, ok := results[Direction{1, 0}]
		require.True(t, ok)
		require.Equal(t, Black, side[6][4])
		require.Equal(t, Black, side[6][5])
	})

	t.Run("three marbles push two opposing ones", func(t *testing.T) {
		board := marbleBoard([]Coord{{5, 4}, {5, 5}}, []Coord{{5, 1}, {5, 2}, {5, 3}})
		s := blackMoverState(t, board)
		results := s.CoordMoves([]Coord{{5, 1}, {5, 2}, {5, 3}})

		expected := board
		expected[5][1] = Empty
		expected[5][4] = Black
		expected[5][6] = White
		require.Equal(t, expected, results[Direction{0, 1}])
	})

	t.Run("rejects marbles off the common line", func(t *testing.T) {
		s := blackMoverState(t, marbleBoard(nil, []Coord{{5, 4}, {6, 5}}))
		require.Empty(t, s.CoordMoves([]Coord{{5, 4}, {6, 5}}))
	})

	t.Run("rejects selections larger than a row", func(t *testing.T) {
		blacks := []Coord{{5, 2}, {5, 3}, {5, 4}, {5, 5}}
		s := blackMoverState(t, marbleBoard(nil, blacks))
		require.Empty(t, s.CoordMoves(blacks))
	})

	t.Run("blocked directions are left out", func(t *testing.T) {
		// opposing marble ahead that cannot be pushed by a pair of two
		// against two, own marble blocking one broadside target
		board := marbleBoard([]Coord{{5, 6}, {5, 7}}, []Coord{{5, 4}, {5, 5}, {6, 4}})
		s := blackMoverState(t, board)
		results := s.CoordMoves([]Coord{{5, 4}, {5, 5}})
		_, forward := results[Direction{0, 1}]
		require.False(t, forward)
		_, down := results[Direction{1, 0}]
		require.False(t, down)
	})
}

func TestDifferences(t *testing.T) {
	t.Run("marks changed cells", func(t *testing.T) {
		board := marbleBoard(nil, []Coord{{5, 5}})
		s := blackMoverState(t, board)

		next := board
		next[5][5] = Empty
		next[5][6] = Black

		marked := map[Coord]struct{}{}
		s.Differences(next, marked)
		require.Len(t, marked, 2)
		require.Contains(t, marked, Coord{5, 5})
		require.Contains(t, marked, Coord{5, 6})
	})

	t.Run("marks the far marble of a three-against-two push", func(t *testing.T) {
		board := marbleBoard([]Coord{{5, 4}, {5, 5}}, []Coord{{5, 1}, {5, 2}, {5, 3}})
		s := blackMoverState(t, board)

		next := board
		next[5][1] = Empty
		next[5][4] = Black
		next[5][6] = White

		// seeded with the moving line, as the frontend sends it
		marked := map[Coord]struct{}{
			{5, 1}: {}, {5, 2}: {}, {5, 3}: {},
		}
		s.Differences(next, marked)
		require.Len(t, marked, 6)
		// the middle pushed marble kept its color but moved anyway
		require.Contains(t, marked, Coord{5, 5})
	})
}
