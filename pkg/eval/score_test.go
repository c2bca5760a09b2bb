package eval_test

import (
	"testing"

	"github.com/jprovost/brindle/pkg/eval"
	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	t.Run("Max/Min", func(t *testing.T) {
		assert.Equal(t, eval.Score(5), eval.Max(5, 3))
		assert.Equal(t, eval.Score(5), eval.Max(3, 5))
		assert.Equal(t, eval.Score(3), eval.Min(5, 3))
		assert.Equal(t, eval.Score(3), eval.Min(3, 5))
	})

	t.Run("Crop clamps into [MinScore, MaxScore]", func(t *testing.T) {
		assert.Equal(t, eval.MaxScore, eval.Crop(eval.Inf))
		assert.Equal(t, eval.MinScore, eval.Crop(eval.NegInf))
		assert.Equal(t, eval.Score(17), eval.Crop(17))
	})

	t.Run("IsMate recognizes mate scores in either direction", func(t *testing.T) {
		assert.True(t, eval.IsMate(eval.MateScore))
		assert.True(t, eval.IsMate(-eval.MateScore))
		assert.False(t, eval.IsMate(eval.DrawScore))
		assert.False(t, eval.IsMate(eval.MaxScore-2000))
	})

	t.Run("MateIn reports full moves to mate and sign", func(t *testing.T) {
		n, ok := eval.MateIn(eval.MateScore - 1)
		assert.True(t, ok)
		assert.Equal(t, 1, n, "mate delivered next move is mate in 1")

		n, ok = eval.MateIn(eval.MateScore - 2)
		assert.True(t, ok)
		assert.Equal(t, 1, n, "two plies from the mating score is still mate in 1 full move")

		n, ok = eval.MateIn(-(eval.MateScore - 1))
		assert.True(t, ok)
		assert.Equal(t, -1, n, "being mated is reported as a negative count")

		_, ok = eval.MateIn(eval.DrawScore)
		assert.False(t, ok)
	})

	t.Run("ToTT/FromTT round trip and rebase mate distance by ply", func(t *testing.T) {
		for _, s := range []eval.Score{eval.DrawScore, 37, -250, eval.MaxScore - 2000} {
			stored := eval.ToTT(s, 5)
			assert.Equal(t, s, stored, "non-mate scores pass through ToTT unchanged")
			assert.Equal(t, s, eval.FromTT(stored, 5))
		}

		// A mate found 3 plies into the search is stored relative to the node (closer to
		// MateScore, since fewer plies remain from there) and must rebase back exactly.
		root := eval.MateScore - 3
		stored := eval.ToTT(root, 3)
		assert.Equal(t, eval.MateScore, stored)
		assert.Equal(t, root, eval.FromTT(stored, 3))

		root = -eval.MateScore + 3
		stored = eval.ToTT(root, 3)
		assert.Equal(t, -eval.MateScore, stored)
		assert.Equal(t, root, eval.FromTT(stored, 3))
	})

	t.Run("String renders mate scores and centipawns", func(t *testing.T) {
		assert.Equal(t, "mate 1", (eval.MateScore - 1).String())
		assert.Equal(t, "1.00", eval.Score(100).String())
		assert.Equal(t, "-0.50", eval.Score(-50).String())
	})
}
