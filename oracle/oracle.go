// Package oracle provides position evaluation for the move search. An
// evaluator returns a policy over the move-id space plus a rating of the
// position; the search samples its simulations from the policy and scores
// cut-off simulations with the rating.
package oracle

import "abalone/game"

// Evaluator scores a position stated from the perspective of the side to
// move, which always plays the white marbles. The policy holds one logit per
// move id and must cover game.MoveCount entries; the rating lies in [-1, 1]
// where 1 favors the mover. Implementations must be safe for concurrent use
// by the simulation workers.
type Evaluator interface {
	Evaluate(board game.Board) (policy []float32, rating float32, err error)
}
