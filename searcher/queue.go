package searcher

import (
	"math"
	"sync"

	"abalone/game"
)

// task is one simulation order: play the candidate position on the cloned
// game, continue to the end or the depth cutoff, and record the score under
// the candidate.
type task struct {
	sim       *game.State
	candidate game.Board
}

// taskQueue hands out simulation tasks to the workers, newest first.
type taskQueue struct {
	mu    sync.Mutex
	tasks []task
}

func (q *taskQueue) push(t task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
}

func (q *taskQueue) pop() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return task{}, false
	}
	t := q.tasks[len(q.tasks)-1]
	q.tasks = q.tasks[:len(q.tasks)-1]
	return t, true
}

// accumulator sums simulation scores per candidate position. Ties between
// equal averages resolve towards the candidate admitted first, which is the
// one with the lowest move index.
type accumulator struct {
	mu     sync.Mutex
	sums   map[game.Board]float64
	visits map[game.Board]int
	order  []game.Board
}

func newAccumulator() *accumulator {
	a := &accumulator{}
	a.reset()
	return a
}

func (a *accumulator) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sums = make(map[game.Board]float64)
	a.visits = make(map[game.Board]int)
	a.order = a.order[:0]
}

// admit registers a candidate before any of its scores arrive, fixing the
// tie-break order.
func (a *accumulator) admit(candidate game.Board) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.sums[candidate]; !ok {
		a.sums[candidate] = 0
		a.order = append(a.order, candidate)
	}
}

func (a *accumulator) add(candidate game.Board, score float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sums[candidate] += score
	a.visits[candidate]++
}

// best returns the admitted candidate with the highest average score.
func (a *accumulator) best() (game.Board, float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.order) == 0 {
		return game.Board{}, 0, false
	}
	var bestBoard game.Board
	bestScore := math.Inf(-1)
	for _, candidate := range a.order {
		visits := a.visits[candidate]
		if visits == 0 {
			continue
		}
		if avg := a.sums[candidate] / float64(visits); avg > bestScore {
			bestBoard = candidate
			bestScore = avg
		}
	}
	if math.IsInf(bestScore, -1) {
		// no scores yet, fall back to the first admitted candidate
		return a.order[0], 0, true
	}
	return bestBoard, bestScore, true
}
