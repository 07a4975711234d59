package oracle

import "abalone/game"

// Material rates positions by the marble loss differential and proposes a
// uniform policy. It serves as the built-in fallback when no trained model is
// available.
type Material struct {
	policy []float32
}

func NewMaterial() *Material {
	// zero logits give a uniform softmax; the slice is shared read-only
	return &Material{policy: make([]float32, game.MoveCount())}
}

func (m *Material) Evaluate(board game.Board) ([]float32, float32, error) {
	ownLoss := game.MaxMarbles - game.CountCells(board, game.White)
	oppLoss := game.MaxMarbles - game.CountCells(board, game.Black)
	rating := float32(oppLoss-ownLoss) / game.LossDefeat
	if rating > 1 {
		rating = 1
	} else if rating < -1 {
		rating = -1
	}
	return m.policy, rating, nil
}
