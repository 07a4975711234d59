package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"abalone/game"
)

func namedBoard(marker int8) game.Board {
	board := game.EmptyBoard
	board[5][5] = marker
	return board
}

func TestTaskQueue(t *testing.T) {
	queue := &taskQueue{}
	_, ok := queue.pop()
	require.False(t, ok)

	first := namedBoard(game.White)
	second := namedBoard(game.Black)
	queue.push(task{candidate: first})
	queue.push(task{candidate: second})

	popped, ok := queue.pop()
	require.True(t, ok)
	require.Equal(t, second, popped.candidate, "newest task first")
	popped, ok = queue.pop()
	require.True(t, ok)
	require.Equal(t, first, popped.candidate)
	_, ok = queue.pop()
	require.False(t, ok)
}

func TestAccumulator(t *testing.T) {
	t.Run("averages scores per candidate", func(t *testing.T) {
		results := newAccumulator()
		weak := namedBoard(game.White)
		strong := namedBoard(game.Black)
		results.admit(weak)
		results.admit(strong)

		results.add(weak, 1)
		results.add(weak, -1)
		results.add(strong, 1)
		results.add(strong, 0.5)

		best, score, ok := results.best()
		require.True(t, ok)
		require.Equal(t, strong, best)
		require.InDelta(t, 0.75, score, 1e-9)
	})

	t.Run("ties resolve towards the earlier candidate", func(t *testing.T) {
		results := newAccumulator()
		first := namedBoard(game.White)
		second := namedBoard(game.Black)
		results.admit(first)
		results.admit(second)
		results.add(second, 0.5)
		results.add(first, 0.5)

		best, _, ok := results.best()
		require.True(t, ok)
		require.Equal(t, first, best)
	})

	t.Run("empty accumulator yields nothing", func(t *testing.T) {
		results := newAccumulator()
		_, _, ok := results.best()
		require.False(t, ok)
	})

	t.Run("reset clears candidates", func(t *testing.T) {
		results := newAccumulator()
		results.admit(namedBoard(game.White))
		results.reset()
		_, _, ok := results.best()
		require.False(t, ok)
	})
}
