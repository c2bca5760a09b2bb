package search_test

import (
	"context"
	"testing"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/jprovost/brindle/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestTranspositionTable(t *testing.T) {
	t.Run("write then read round trips", func(t *testing.T) {
		tt := search.NewTranspositionTable(context.Background(), 1<<16)

		hash := board.ZobristHash(0x1234)
		m := board.Move{From: board.E2, To: board.E4}
		ok := tt.Write(hash, search.ExactBound, 4, 123, m)
		assert.True(t, ok)

		bound, depth, score, move, found := tt.Read(hash)
		assert.True(t, found)
		assert.Equal(t, search.ExactBound, bound)
		assert.Equal(t, 4, depth)
		assert.Equal(t, eval.Score(123), score)
		assert.True(t, move.Equals(m))
	})

	t.Run("read misses an unwritten hash", func(t *testing.T) {
		tt := search.NewTranspositionTable(context.Background(), 1<<16)
		_, _, _, _, found := tt.Read(board.ZobristHash(0xdead))
		assert.False(t, found)
	})

	t.Run("same generation keeps the deeper entry for an exact-hash collision", func(t *testing.T) {
		tt := search.NewTranspositionTable(context.Background(), 1<<16)
		hash := board.ZobristHash(0xabc)

		assert.True(t, tt.Write(hash, search.ExactBound, 8, 10, board.Move{}))
		ok := tt.Write(hash, search.ExactBound, 2, 20, board.Move{})
		assert.False(t, ok, "a shallower same-generation write must not replace a deeper one")

		_, depth, score, _, _ := tt.Read(hash)
		assert.Equal(t, 8, depth)
		assert.Equal(t, eval.Score(10), score)
	})

	t.Run("NewGeneration lets a later write replace a stale entry regardless of depth", func(t *testing.T) {
		tt := search.NewTranspositionTable(context.Background(), 1<<16)
		hash := board.ZobristHash(0xabc)

		assert.True(t, tt.Write(hash, search.ExactBound, 8, 10, board.Move{}))
		tt.NewGeneration()
		assert.True(t, tt.Write(hash, search.ExactBound, 1, 30, board.Move{}))

		_, depth, score, _, _ := tt.Read(hash)
		assert.Equal(t, 1, depth)
		assert.Equal(t, eval.Score(30), score)
	})

	t.Run("Used reports table utilization", func(t *testing.T) {
		tt := search.NewTranspositionTable(context.Background(), 1<<16)
		assert.Equal(t, float64(0), tt.Used())
		tt.Write(board.ZobristHash(1), search.ExactBound, 1, 1, board.Move{})
		assert.Greater(t, tt.Used(), float64(0))
	})

	t.Run("WriteLimited drops writes below the configured depth", func(t *testing.T) {
		inner := search.NewTranspositionTable(context.Background(), 1<<16)
		limited := search.NewMinDepthTranspositionTable(4)(context.Background(), 1<<16)
		_ = inner

		hash := board.ZobristHash(0x42)
		assert.False(t, limited.Write(hash, search.ExactBound, 2, 5, board.Move{}))
		_, _, _, _, found := limited.Read(hash)
		assert.False(t, found)

		assert.True(t, limited.Write(hash, search.ExactBound, 4, 5, board.Move{}))
		_, _, _, _, found = limited.Read(hash)
		assert.True(t, found)
	})

	t.Run("NoTranspositionTable never stores anything", func(t *testing.T) {
		var tt search.NoTranspositionTable
		assert.False(t, tt.Write(board.ZobristHash(1), search.ExactBound, 10, 10, board.Move{}))
		_, _, _, _, found := tt.Read(board.ZobristHash(1))
		assert.False(t, found)
		assert.Equal(t, uint64(0), tt.Size())
		assert.Equal(t, float64(0), tt.Used())
	})
}
