// Package agent ties the game engine, the search coordinator and the
// evaluation oracle into a playing agent: it owns the running game, answers
// external moves with searched own moves, and manages the worker lifecycle
// across games.
package agent

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"abalone/game"
	"abalone/oracle"
	"abalone/searcher"
)

var (
	// ErrGameOver is returned when a move is requested on a finished game.
	ErrGameOver = errors.New("game already ended")
	// ErrStopped is returned after Stop.
	ErrStopped = errors.New("agent stopped")
)

// Agent plays one game at a time. All methods are safe for concurrent use.
type Agent struct {
	mu          sync.Mutex
	game        *game.State
	coordinator *searcher.Coordinator
	evaluator   oracle.Evaluator
	workers     int
	options     []searcher.Option
	stopped     bool
}

// New starts an agent on the given position with a running worker pool.
func New(board game.Board, evaluator oracle.Evaluator, workers int, options ...searcher.Option) (*Agent, error) {
	state, err := game.NewState(board)
	if err != nil {
		return nil, err
	}
	return &Agent{
		game:        state,
		coordinator: searcher.New(evaluator, workers, options...),
		evaluator:   evaluator,
		workers:     workers,
		options:     options,
	}, nil
}

// OwnMove searches a move for the side to move and applies it. The chosen
// position is returned from the mover's perspective when rotated is set,
// otherwise in absolute orientation. When the move ends the game the worker
// pool shuts down; NewGame restarts it. A failing evaluation aborts the move
// and leaves the game untouched.
func (a *Agent) OwnMove(rotated bool) (game.Board, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	best, _, err := a.ownMove()
	if err != nil {
		return game.Board{}, err
	}
	if rotated {
		return best, nil
	}
	return a.game.Board(), nil
}

// Reply behaves like OwnMove but returns the new position in absolute
// orientation together with the coordinates the move changed, stated against
// the position before the move.
func (a *Agent) Reply() (game.Board, []game.Coord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, changed, err := a.ownMove()
	if err != nil {
		return game.Board{}, nil, err
	}
	return a.game.Board(), changed, nil
}

// ownMove runs one search decision and applies the chosen position. The
// changed coordinates are computed from the game before applying, so the
// mover's color is still the one the search moved for. Caller holds the lock.
func (a *Agent) ownMove() (game.Board, []game.Coord, error) {
	if a.game.Ended() {
		return game.Board{}, nil, ErrGameOver
	}
	if a.stopped {
		return game.Board{}, nil, ErrStopped
	}

	start := time.Now()
	best, metric, err := a.coordinator.Search(a.game)
	if err != nil {
		return game.Board{}, nil, fmt.Errorf("search move: %w", err)
	}

	absolute := best
	if a.game.BlackToMove() {
		absolute = game.Rotate(best)
	}
	marked := make(map[game.Coord]struct{})
	a.game.Differences(absolute, marked)
	changed := make([]game.Coord, 0, len(marked))
	for coord := range marked {
		changed = append(changed, coord)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].Less(changed[j]) })

	a.game.Apply(best)

	log.Info().
		Int("turn", a.game.TurnNumber()).
		Int64("simulations", metric.Simulations).
		Int64("playouts", metric.FullPlayouts).
		Dur("duration", time.Since(start)).
		Msg("own move applied")

	a.stopIfEnded()
	return best, changed, nil
}

// ExternalMove applies an opponent move, given from the mover's perspective
// like game.State.Apply expects it.
func (a *Agent) ExternalMove(board game.Board) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applyExternal(board)
}

// ExternalMoveAbsolute applies an opponent move given in absolute
// orientation, as the frontend states it.
func (a *Agent) ExternalMoveAbsolute(board game.Board) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.game.BlackToMove() {
		board = game.Rotate(board)
	}
	return a.applyExternal(board)
}

func (a *Agent) applyExternal(board game.Board) error {
	if a.game.Ended() {
		return ErrGameOver
	}
	if a.stopped {
		return ErrStopped
	}
	if !game.Validate(board) {
		return game.ErrInvalidBoard
	}
	a.game.Apply(board)
	a.stopIfEnded()
	return nil
}

// NewGame abandons the current game and starts over from the given position,
// restarting the worker pool if a finished game shut it down.
func (a *Agent) NewGame(board game.Board) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	state, err := game.NewState(board)
	if err != nil {
		return err
	}
	if a.stopped {
		a.coordinator = searcher.New(a.evaluator, a.workers, a.options...)
		a.stopped = false
	}
	a.game = state
	log.Info().Msg("new game started")
	return nil
}

// Resign ends the running game in favor of the opponent of the side to move.
func (a *Agent) Resign() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.game.Ended() {
		return
	}
	outcome := game.WhiteWins
	if !a.game.BlackToMove() {
		outcome = game.BlackWins
	}
	a.game.EndWithResult(outcome)
	a.stopIfEnded()
}

// Stop shuts the worker pool down. The agent only serves NewGame afterwards.
func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Agent) stopIfEnded() {
	if a.game.Ended() {
		log.Info().Str("outcome", a.game.Outcome().String()).Msg("game ended")
		a.stopLocked()
	}
}

func (a *Agent) stopLocked() {
	if a.stopped {
		return
	}
	a.coordinator.Stop()
	a.stopped = true
}

// Board returns the current position in absolute orientation.
func (a *Agent) Board() game.Board {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.Board()
}

// BlackToMove reports whether black makes the next move.
func (a *Agent) BlackToMove() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.BlackToMove()
}

// Ended reports whether the running game reached a terminal position.
func (a *Agent) Ended() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.Ended()
}

// Outcome returns the result of the running game.
func (a *Agent) Outcome() game.Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.Outcome()
}

// Losses returns the marbles lost by black and by white.
func (a *Agent) Losses() (blackLoss, whiteLoss int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.Losses()
}

// TurnNumber returns the number of the move about to be made.
func (a *Agent) TurnNumber() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.TurnNumber()
}

// Assist returns the legal follow-up positions for an explicitly selected
// marble group, keyed by travel direction, in absolute orientation.
func (a *Agent) Assist(coords []game.Coord) map[game.Direction]game.Board {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.CoordMoves(coords)
}

// Changed adds the coordinates at which the given absolute board deviates
// from the current position to marked, including the furthest marble of a
// three-against-two push when marked is seeded with the moved line.
func (a *Agent) Changed(board game.Board, marked map[game.Coord]struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.game.Differences(board, marked)
}
