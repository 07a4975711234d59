package searcher

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"abalone/game"
)

var errFixture = errors.New("oracle offline")

// stubOracle returns fixed evaluations.
type stubOracle struct {
	policy []float32
	rating float32
	err    error
}

func (o *stubOracle) Evaluate(board game.Board) ([]float32, float32, error) {
	return o.policy, o.rating, o.err
}

func uniformOracle() *stubOracle {
	return &stubOracle{policy: make([]float32, game.MoveCount())}
}

func TestSampleVisits(t *testing.T) {
	t.Run("keeps the minimum and conserves the total", func(t *testing.T) {
		c := New(uniformOracle(), 1, WithSeed(1), WithSimulations(60), WithMinVisits(4))
		defer c.Stop()

		dist := newDistribution([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, make([]float32, 10))
		counts := c.sampleVisits(dist)
		require.Len(t, counts, 10)

		total := 0
		for _, count := range counts {
			if count != 0 {
				require.GreaterOrEqual(t, count, 4)
			}
			total += count
		}
		require.Equal(t, 60, total)
	})

	t.Run("concentrates when no candidate reaches the minimum", func(t *testing.T) {
		c := New(uniformOracle(), 1, WithSeed(1), WithSimulations(3), WithMinVisits(5))
		defer c.Stop()

		dist := newDistribution([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, make([]float32, 10))
		counts := c.sampleVisits(dist)

		nonzero := 0
		for _, count := range counts {
			if count != 0 {
				nonzero++
				require.Equal(t, 3, count)
			}
		}
		require.Equal(t, 1, nonzero)
	})

	t.Run("leaves counts alone without a minimum", func(t *testing.T) {
		c := New(uniformOracle(), 1, WithSeed(1), WithSimulations(10))
		defer c.Stop()

		dist := newDistribution([]int{0, 1}, make([]float32, 2))
		counts := c.sampleVisits(dist)
		require.Equal(t, 10, counts[0]+counts[1])
	})
}

func TestSearchFindsWinningCapture(t *testing.T) {
	// the mover can push the ninth opposing marble off the edge and win on
	// the spot; every simulation of that candidate scores 1 while all other
	// candidates are cut off after one reply and rated even
	pov := game.EmptyBoard
	for _, c := range []game.Coord{{Row: 1, Col: 7}, {Row: 1, Col: 8}, {Row: 5, Col: 1}, {Row: 5, Col: 2}, {Row: 5, Col: 3}, {Row: 6, Col: 1}, {Row: 6, Col: 2}, {Row: 7, Col: 1}, {Row: 7, Col: 2}} {
		pov[c.Row][c.Col] = game.White
	}
	for _, c := range []game.Coord{{Row: 1, Col: 9}, {Row: 8, Col: 1}, {Row: 8, Col: 2}, {Row: 8, Col: 3}, {Row: 9, Col: 1}, {Row: 9, Col: 2}, {Row: 9, Col: 3}, {Row: 9, Col: 4}, {Row: 9, Col: 5}} {
		pov[c.Row][c.Col] = game.Black
	}
	s, err := game.NewState(game.Rotate(pov))
	require.NoError(t, err)

	c := New(uniformOracle(), 4,
		WithSeed(3),
		WithSimulations(1000),
		WithDepth(1),
		WithPollInterval(time.Millisecond),
		WithMetrics(),
	)
	defer c.Stop()

	expected := pov
	expected[1][7] = game.Empty
	expected[1][9] = game.White

	best, metric, err := c.Search(s)
	require.NoError(t, err)
	require.Equal(t, expected, best)
	require.Equal(t, int64(1000), metric.Simulations)
	require.Equal(t, 4, metric.Workers)
	require.Greater(t, metric.FullPlayouts, int64(0))
	require.Greater(t, metric.CacheHits, int64(0))
	require.Greater(t, metric.Duration, time.Duration(0))

	// the searched state stays untouched
	require.Equal(t, 1, s.TurnNumber())
	require.Equal(t, game.Rotate(pov), s.Board())

	// the coordinator is reusable for the next search
	best, metric, err = c.Search(s)
	require.NoError(t, err)
	require.Equal(t, expected, best)
	require.Equal(t, int64(1000), metric.Simulations)
}

// expiringOracle serves a number of evaluations and then fails.
type expiringOracle struct {
	policy []float32
	limit  int64
	calls  atomic.Int64
}

func (o *expiringOracle) Evaluate(board game.Board) ([]float32, float32, error) {
	if o.calls.Add(1) > o.limit {
		return nil, 0, errFixture
	}
	return o.policy, 0, nil
}

func TestSearchFailsOnOracleErrors(t *testing.T) {
	t.Run("failure on the root policy", func(t *testing.T) {
		broken := &stubOracle{err: errFixture}
		c := New(broken, 2, WithSeed(5), WithSimulations(20), WithDepth(1), WithPollInterval(time.Millisecond))
		defer c.Stop()

		s, err := game.NewState(game.BelgianDaisy)
		require.NoError(t, err)

		_, _, err = c.Search(s)
		require.ErrorIs(t, err, errFixture)
		require.Equal(t, 1, s.TurnNumber())
	})

	t.Run("failure during simulation", func(t *testing.T) {
		// the root policy succeeds, every later evaluation fails; the workers
		// must still drain the queue so Search can report the error
		expiring := &expiringOracle{policy: make([]float32, game.MoveCount()), limit: 1}
		c := New(expiring, 2, WithSeed(5), WithSimulations(20), WithDepth(1), WithPollInterval(time.Millisecond))
		defer c.Stop()

		s, err := game.NewState(game.BelgianDaisy)
		require.NoError(t, err)

		_, _, err = c.Search(s)
		require.ErrorIs(t, err, errFixture)
	})
}

func TestStop(t *testing.T) {
	c := New(uniformOracle(), 3, WithPollInterval(time.Millisecond))
	done := make(chan struct{})
	go func() {
		c.Stop()
		c.Stop() // idempotent
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop")
	}
}
