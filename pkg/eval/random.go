package eval

import (
	"math/rand"

	"github.com/jprovost/brindle/pkg/board"
)

// Random adds a small amount of noise to evaluations, useful for varying an engine's move
// choice between otherwise-equal games. Limit bounds the noise to [-limit/2, limit/2]
// centipawns; the zero value always returns zero.
type Random struct {
	rand  *rand.Rand
	limit int
}

func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (n Random) Evaluate(pos *board.Position) Score {
	if n.limit <= 0 || n.rand == nil {
		return 0
	}
	return Score(n.rand.Intn(n.limit) - n.limit/2)
}
