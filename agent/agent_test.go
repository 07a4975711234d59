package agent

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"abalone/game"
	"abalone/oracle"
	"abalone/searcher"
)

func testAgent(t *testing.T) *Agent {
	t.Helper()
	a, err := New(game.BelgianDaisy, oracle.NewMaterial(), 2,
		searcher.WithSeed(1),
		searcher.WithSimulations(20),
		searcher.WithDepth(2),
		searcher.WithPollInterval(time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(a.Stop)
	return a
}

func TestNew(t *testing.T) {
	t.Run("rejects invalid boards", func(t *testing.T) {
		board := game.BelgianDaisy
		board[0][0] = game.White
		_, err := New(board, oracle.NewMaterial(), 1)
		require.ErrorIs(t, err, game.ErrInvalidBoard)
	})

	t.Run("starts with black to move", func(t *testing.T) {
		a := testAgent(t)
		require.True(t, a.BlackToMove())
		require.False(t, a.Ended())
		require.Equal(t, 1, a.TurnNumber())
		require.Equal(t, game.BelgianDaisy, a.Board())
	})
}

func TestMoveExchange(t *testing.T) {
	a := testAgent(t)

	// the agent opens for black
	moved, err := a.OwnMove(false)
	require.NoError(t, err)
	require.True(t, game.Validate(moved))
	require.Equal(t, moved, a.Board())
	require.NotEqual(t, game.BelgianDaisy, moved)
	require.False(t, a.BlackToMove())
	require.Equal(t, 2, a.TurnNumber())

	// white answers with any move found via the assist helper
	_, whites, _ := game.CoordsByType(a.Board())
	var reply game.Board
	found := false
	for _, marble := range whites {
		for _, board := range a.Assist([]game.Coord{marble}) {
			reply = board
			found = true
			break
		}
		if found {
			break
		}
	}
	require.True(t, found)
	require.NoError(t, a.ExternalMoveAbsolute(reply))
	require.Equal(t, reply, a.Board())
	require.True(t, a.BlackToMove())
	require.Equal(t, 3, a.TurnNumber())

	// the rotated variant reports the mover's perspective
	rotated, err := a.OwnMove(true)
	require.NoError(t, err)
	require.Equal(t, game.Rotate(rotated), a.Board())
}

func TestReply(t *testing.T) {
	a := testAgent(t)
	before := a.Board()

	reply, changed, err := a.Reply()
	require.NoError(t, err)
	require.Equal(t, reply, a.Board())
	require.False(t, a.BlackToMove())

	// the reported cells are exactly those the move touched
	var expected []game.Coord
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			if before[r][c] != reply[r][c] {
				expected = append(expected, game.Coord{Row: r, Col: c})
			}
		}
	}
	require.NotEmpty(t, expected)
	require.ElementsMatch(t, expected, changed)

	// the white reply is stated against its own pre-move position
	mid := a.Board()
	reply, changed, err = a.Reply()
	require.NoError(t, err)
	require.Equal(t, reply, a.Board())
	require.True(t, a.BlackToMove())

	expected = expected[:0]
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			if mid[r][c] != reply[r][c] {
				expected = append(expected, game.Coord{Row: r, Col: c})
			}
		}
	}
	require.NotEmpty(t, expected)
	require.ElementsMatch(t, expected, changed)
}

var errOracleDown = errors.New("oracle down")

// downOracle fails every evaluation.
type downOracle struct{}

func (downOracle) Evaluate(game.Board) ([]float32, float32, error) {
	return nil, 0, errOracleDown
}

func TestOwnMoveFailsWithOracle(t *testing.T) {
	a, err := New(game.BelgianDaisy, downOracle{}, 1,
		searcher.WithSimulations(5),
		searcher.WithPollInterval(time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(a.Stop)

	_, err = a.OwnMove(false)
	require.ErrorIs(t, err, errOracleDown)

	// the failed move leaves the game untouched
	require.Equal(t, game.BelgianDaisy, a.Board())
	require.Equal(t, 1, a.TurnNumber())
	require.True(t, a.BlackToMove())

	_, _, err = a.Reply()
	require.ErrorIs(t, err, errOracleDown)
}

func TestChanged(t *testing.T) {
	a := testAgent(t)
	next, err := a.OwnMove(true)
	require.NoError(t, err)

	// compare against the pre-move agent: differences of the confirmed move
	before := testAgent(t)
	marked := map[game.Coord]struct{}{}
	before.Changed(game.Rotate(next), marked)
	require.NotEmpty(t, marked)
}

func TestStop(t *testing.T) {
	a := testAgent(t)
	a.Stop()
	a.Stop() // idempotent

	_, err := a.OwnMove(false)
	require.ErrorIs(t, err, ErrStopped)
	require.ErrorIs(t, a.ExternalMove(game.BelgianDaisy), ErrStopped)

	// a new game restarts the worker pool
	require.NoError(t, a.NewGame(game.BelgianDaisy))
	_, err = a.OwnMove(false)
	require.NoError(t, err)
}

func TestResign(t *testing.T) {
	a := testAgent(t)
	a.Resign()
	require.True(t, a.Ended())
	require.Equal(t, game.WhiteWins, a.Outcome())

	_, err := a.OwnMove(false)
	require.ErrorIs(t, err, ErrGameOver)
}
