package searcher

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"abalone/game"
	"abalone/oracle"
)

type Option func(c *Coordinator)

// Coordinator runs concurrent move searches. It samples candidate moves from
// the oracle's policy, hands simulation tasks to a fixed worker pool, and
// picks the candidate with the best average simulation score. A Coordinator
// serves one Search call at a time.
type Coordinator struct {
	workers     int
	simulations int
	minVisits   int
	depth       int
	poll        time.Duration
	evaluator   oracle.Evaluator
	rng         *rand.Rand
	cache       *distributionCache
	queue       *taskQueue
	results     *accumulator
	finished    atomic.Int64
	errMu       sync.Mutex
	searchErr   error
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	metrics     MetricsCollector
}

// WithSimulations sets the number of simulation visits per move search.
func WithSimulations(simulations int) Option {
	return func(c *Coordinator) {
		if simulations > 0 {
			c.simulations = simulations
		}
	}
}

// WithMinVisits sets the minimum number of visits a sampled candidate must
// receive; candidates drawn fewer times have their visits resampled onto the
// remaining candidates.
func WithMinVisits(visits int) Option {
	return func(c *Coordinator) {
		if visits > 0 {
			c.minVisits = visits
		}
	}
}

// WithDepth cuts simulations off after the given number of moves and scores
// the reached position with the oracle's rating. Zero plays out to the end.
func WithDepth(depth int) Option {
	return func(c *Coordinator) {
		if depth > 0 {
			c.depth = depth
		}
	}
}

// WithPollInterval sets how often idle workers and a waiting Search re-check
// for progress.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Coordinator) {
		if interval > 0 {
			c.poll = interval
		}
	}
}

// WithSeed makes candidate sampling and simulation playouts deterministic.
func WithSeed(seed uint64) Option {
	return func(c *Coordinator) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

func WithMetrics() Option {
	return func(c *Coordinator) {
		c.metrics = NewMetricsCollector()
	}
}

// New starts a coordinator with the given worker pool size. The workers idle
// until Search enqueues tasks and run until Stop.
func New(evaluator oracle.Evaluator, workers int, options ...Option) *Coordinator {
	if workers <= 0 {
		panic("need at least one simulation worker")
	}
	c := &Coordinator{ // Default values
		workers:     workers,
		simulations: 100,
		minVisits:   1,
		poll:        100 * time.Millisecond,
		evaluator:   evaluator,
		rng:         rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		cache:       newDistributionCache(),
		queue:       &taskQueue{},
		results:     newAccumulator(),
		stop:        make(chan struct{}),
		metrics:     NewNoMetricsCollector(),
	}
	for _, option := range options {
		option(c)
	}
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.work(rand.New(rand.NewSource(c.rng.Uint64())))
	}
	return c
}

// Search finds the best follow-up position for the side to move. It returns
// the position from the mover's perspective, like game.State.LegalMoves does.
// The given state is only read and cloned, never advanced. An evaluator
// failure aborts the search and is returned; no move is chosen then.
func (c *Coordinator) Search(s *game.State) (game.Board, SearchMetrics, error) {
	pov, ids := s.LegalMoves()
	if len(ids) == 0 {
		panic("no legal moves to search")
	}
	c.metrics.Start(c.workers)

	dist, err := c.distributionFor(pov, ids)
	if err != nil {
		return game.Board{}, c.metrics.Complete(), err
	}
	counts := c.sampleVisits(dist)

	// reset the completion barrier before the first task becomes visible
	c.finished.Store(0)
	c.results.reset()
	c.setSearchErr(nil)

	// enqueue one task per candidate first so every candidate gets simulated
	// early, then the repeat visits
	total := int64(0)
	for i, count := range counts {
		if count == 0 {
			continue
		}
		total += int64(count)
		candidate := s.NextPosition(i)
		c.results.admit(candidate)
		c.queue.push(task{sim: s.SimCopy(), candidate: candidate})
	}
	for i, count := range counts {
		candidate := s.NextPosition(i)
		for v := 1; v < count; v++ {
			c.queue.push(task{sim: s.SimCopy(), candidate: candidate})
		}
	}

	for c.finished.Load() < total {
		time.Sleep(c.poll)
	}

	metric := c.metrics.Complete()
	if err := c.takeSearchErr(); err != nil {
		return game.Board{}, metric, err
	}
	best, score, _ := c.results.best()
	log.Debug().
		Int64("simulations", total).
		Int("candidates", len(c.results.order)).
		Float64("score", score).
		Dur("duration", metric.Duration).
		Msg("search complete")
	return best, metric, nil
}

// setSearchErr records the first simulation error of the running search;
// takeSearchErr reads it back after the completion barrier.
func (c *Coordinator) setSearchErr(err error) {
	c.errMu.Lock()
	if c.searchErr == nil || err == nil {
		c.searchErr = err
	}
	c.errMu.Unlock()
}

func (c *Coordinator) takeSearchErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.searchErr
}

// Stop shuts the worker pool down and waits for the workers to exit. The
// coordinator cannot be reused afterwards.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	c.wg.Wait()
}

// sampleVisits draws the per-candidate visit counts. Candidates drawn fewer
// than minVisits times are dropped and their visits resampled onto candidates
// that kept the minimum, so every simulated candidate carries a meaningful
// average and the total stays at the configured simulation count.
func (c *Coordinator) sampleVisits(dist *distribution) []int {
	counts := make([]int, dist.size())
	for i := 0; i < c.simulations; i++ {
		counts[dist.sample(c.rng)]++
	}
	if c.minVisits <= 1 {
		return counts
	}

	freed := 0
	survivor := false
	for i, count := range counts {
		if count >= c.minVisits {
			survivor = true
		} else if count > 0 {
			freed += count
			counts[i] = 0
		}
	}
	if !survivor {
		// every candidate fell below the minimum, concentrate on the
		// most probable one
		counts[dist.top()] = c.simulations
		return counts
	}
	for freed > 0 {
		i := dist.sample(c.rng)
		if counts[i] < c.minVisits-1 {
			continue
		}
		counts[i]++
		freed--
	}
	return counts
}

// work is the simulation worker loop.
func (c *Coordinator) work(rng *rand.Rand) {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		default:
		}
		t, ok := c.queue.pop()
		if !ok {
			time.Sleep(c.poll)
			continue
		}
		if err := c.runTask(t, rng); err != nil {
			c.setSearchErr(err)
		}
		c.metrics.AddSimulation()
		c.finished.Add(1)
	}
}

// runTask plays the candidate on the cloned game, continues by sampling moves
// from the cached policy distributions, and records the reached score under
// the candidate. Scores are stated from the perspective of the side that
// chose the candidate. An evaluator failure aborts the task.
func (c *Coordinator) runTask(t task, rng *rand.Rand) error {
	rootBlack := t.sim.BlackToMove()
	t.sim.Apply(t.candidate)

	depth := 0
	for !t.sim.Ended() && (c.depth == 0 || depth < c.depth) {
		pov, ids := t.sim.LegalMoves()
		if len(ids) == 0 {
			break
		}
		dist, err := c.distributionFor(pov, ids)
		if err != nil {
			return err
		}
		t.sim.ApplyIndex(dist.sample(rng))
		depth++
	}

	var score float64
	if t.sim.Ended() {
		score = float64(t.sim.Outcome().Score())
		c.metrics.AddFullPlayout()
	} else {
		_, rating, err := c.evaluator.Evaluate(t.sim.RotatedBoard())
		if err != nil {
			return fmt.Errorf("rate leaf position: %w", err)
		}
		score = float64(rating)
		// the rating favors the side to move at the leaf, state it from
		// white's perspective first
		if t.sim.BlackToMove() {
			score = -score
		}
	}
	if rootBlack {
		score = -score
	}
	c.results.add(t.candidate, score)
	return nil
}

// distributionFor returns the memoized sampling distribution of a position,
// consulting the oracle on a cache miss.
func (c *Coordinator) distributionFor(pov game.Board, ids []int) (*distribution, error) {
	if dist, ok := c.cache.get(pov); ok {
		c.metrics.AddCacheHit()
		return dist, nil
	}
	policy, _, err := c.evaluator.Evaluate(pov)
	if err != nil {
		return nil, fmt.Errorf("evaluate position: %w", err)
	}
	dist := newDistribution(ids, policy)
	c.cache.put(pov, dist)
	return dist, nil
}
