package board_test

import (
	"testing"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquare(t *testing.T) {
	t.Run("NewSquare/File/Rank round trip over every square", func(t *testing.T) {
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			for r := board.ZeroRank; r < board.NumRanks; r++ {
				sq := board.NewSquare(f, r)
				assert.Equal(t, f, sq.File())
				assert.Equal(t, r, sq.Rank())
			}
		}
	})

	t.Run("ParseSquare/ParseSquareStr agree with the named constants", func(t *testing.T) {
		tests := []struct {
			str string
			sq  board.Square
		}{
			{"h1", board.H1},
			{"a1", board.A1},
			{"h8", board.H8},
			{"a8", board.A8},
			{"e4", board.E4},
		}

		for _, tt := range tests {
			got, err := board.ParseSquareStr(tt.str)
			require.NoError(t, err)
			assert.Equal(t, tt.sq, got)
		}

		_, err := board.ParseSquareStr("i9")
		assert.Error(t, err)

		_, err = board.ParseSquareStr("e")
		assert.Error(t, err)
	})

	t.Run("Mirror reflects across the midline and is its own inverse", func(t *testing.T) {
		tests := []struct {
			sq, want board.Square
		}{
			{board.A1, board.A8},
			{board.H1, board.H8},
			{board.E4, board.E5},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.want, board.Mirror(tt.sq))
			assert.Equal(t, tt.sq, board.Mirror(board.Mirror(tt.sq)))
		}
	})

	t.Run("IsSameRankOrFile and IsSameDiagonal", func(t *testing.T) {
		assert.True(t, board.IsSameRankOrFile(board.A1, board.A8))
		assert.True(t, board.IsSameRankOrFile(board.A1, board.H1))
		assert.False(t, board.IsSameRankOrFile(board.A1, board.B2))

		assert.True(t, board.IsSameDiagonal(board.A1, board.H8))
		assert.True(t, board.IsSameDiagonal(board.E4, board.F5))
		assert.False(t, board.IsSameDiagonal(board.A1, board.B1))
		assert.False(t, board.IsSameDiagonal(board.A1, board.A1))
	})

	t.Run("ParseMove rejects malformed input and parses promotions", func(t *testing.T) {
		m, err := board.ParseMove("e2e4")
		require.NoError(t, err)
		assert.Equal(t, board.E2, m.From)
		assert.Equal(t, board.E4, m.To)

		m, err = board.ParseMove("a7a8q")
		require.NoError(t, err)
		assert.Equal(t, board.Queen, m.Promotion)

		_, err = board.ParseMove("a7a8k")
		assert.Error(t, err, "king is not a legal promotion piece")

		_, err = board.ParseMove("a7")
		assert.Error(t, err)
	})
}
