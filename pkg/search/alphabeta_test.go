package search_test

import (
	"context"
	"testing"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/jprovost/brindle/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() *search.Context {
	return &search.Context{
		Alpha:       eval.NegInf,
		Beta:        eval.Inf,
		TT:          search.NoTranspositionTable{},
		Pawns:       eval.NewPawnCache(1024),
		Eval:        eval.Standard{},
		Repetitions: map[board.ZobristHash]int{},
	}
}

func newAlphaBeta() search.AlphaBeta {
	return search.AlphaBeta{Quiet: search.Quiescence{Eval: eval.Standard{}}}
}

func TestAlphaBeta(t *testing.T) {
	t.Run("finds a forced mate in one and reports a mate score", func(t *testing.T) {
		// White king h1, pawns trap Black's king on the back rank: Re1-e8 is mate.
		pos, _, _, _, err := fen.Decode("6k1/5ppp/8/8/8/8/8/4R2K w - - 0 1")
		require.NoError(t, err)

		_, score, pv, err := newAlphaBeta().Search(context.Background(), newContext(), pos, 1)
		require.NoError(t, err)

		assert.True(t, eval.IsMate(score))
		assert.Greater(t, score, eval.Score(0), "White, the side to move, delivers the mate")
		require.NotEmpty(t, pv)
		assert.True(t, pv[0].Equals(board.Move{From: board.E1, To: board.E8}))
	})

	t.Run("scores a stalemate as a draw", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
		require.NoError(t, err)

		_, score, pv, err := newAlphaBeta().Search(context.Background(), newContext(), pos, 1)
		require.NoError(t, err)

		assert.Equal(t, eval.DrawScore, score)
		assert.Empty(t, pv)
	})

	t.Run("a deeper search never scores worse for the mating side than a shallower one", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode("6k1/5ppp/8/8/8/8/8/4R2K w - - 0 1")
		require.NoError(t, err)

		_, shallow, _, err := newAlphaBeta().Search(context.Background(), newContext(), pos, 1)
		require.NoError(t, err)
		_, deep, _, err := newAlphaBeta().Search(context.Background(), newContext(), pos, 3)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, deep, shallow)
	})
}
