package searcher

import (
	"math"
	"sort"
	"sync"

	"golang.org/x/exp/rand"

	"abalone/game"
)

// distribution is a sampling distribution over the legal moves of one
// position, built by taking the softmax of the oracle's policy logits
// restricted to the legal move ids. Samples are indices into the legal-move
// list in generation order.
type distribution struct {
	cumulative []float64
}

// newDistribution builds the distribution for the given legal move ids. The
// policy vector must be indexed by move id and cover game.MoveCount entries.
func newDistribution(ids []int, policy []float32) *distribution {
	// shift by the maximum logit to keep the exponentials finite
	maxLogit := math.Inf(-1)
	for _, id := range ids {
		if logit := float64(policy[id]); logit > maxLogit {
			maxLogit = logit
		}
	}
	cumulative := make([]float64, len(ids))
	total := 0.0
	for i, id := range ids {
		total += math.Exp(float64(policy[id]) - maxLogit)
		cumulative[i] = total
	}
	return &distribution{cumulative: cumulative}
}

// sample draws one legal-move index proportionally to the move weights.
func (d *distribution) sample(rng *rand.Rand) int {
	total := d.cumulative[len(d.cumulative)-1]
	return sort.SearchFloat64s(d.cumulative, rng.Float64()*total)
}

// top returns the legal-move index with the largest weight.
func (d *distribution) top() int {
	best, width := 0, d.cumulative[0]
	for i := 1; i < len(d.cumulative); i++ {
		if w := d.cumulative[i] - d.cumulative[i-1]; w > width {
			best, width = i, w
		}
	}
	return best
}

// size returns the number of legal moves covered.
func (d *distribution) size() int {
	return len(d.cumulative)
}

// distributionCache memoizes distributions per position. Simulations revisit
// the same positions constantly, and building a distribution costs an oracle
// evaluation.
type distributionCache struct {
	mu      sync.Mutex
	entries map[game.Board]*distribution
}

func newDistributionCache() *distributionCache {
	return &distributionCache{entries: make(map[game.Board]*distribution)}
}

func (c *distributionCache) get(board game.Board) (*distribution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dist, ok := c.entries[board]
	return dist, ok
}

func (c *distributionCache) put(board game.Board, dist *distribution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[board] = dist
}
