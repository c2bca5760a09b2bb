package board_test

import (
	"testing"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestBitboard(t *testing.T) {
	t.Run("BitMask/PopCount/ToSquares/PopIndex", func(t *testing.T) {
		bb := board.BitMask(board.A1) | board.BitMask(board.H8) | board.BitMask(board.E4)
		assert.Equal(t, 3, bb.PopCount())
		assert.ElementsMatch(t, []board.Square{board.A1, board.E4, board.H8}, bb.ToSquares())

		sq := bb.PopIndex()
		assert.Equal(t, board.A1, sq, "PopIndex pops the least-significant (lowest index) square first")
		assert.Equal(t, 2, bb.PopCount())
	})

	t.Run("BitRank/BitFile cover exactly their rank/file", func(t *testing.T) {
		rank := board.BitRank(board.Rank4)
		assert.Equal(t, 8, rank.PopCount())
		for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
			assert.Equal(t, sq.Rank() == board.Rank4, rank.IsSet(sq))
		}

		file := board.BitFile(board.FileE)
		assert.Equal(t, 8, file.PopCount())
		for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
			assert.Equal(t, sq.File() == board.FileE, file.IsSet(sq))
		}
	})

	t.Run("KingAttackboard", func(t *testing.T) {
		assert.Equal(t, 8, board.KingAttackboard(board.E4).PopCount(), "a king in the center attacks 8 squares")
		assert.Equal(t, 3, board.KingAttackboard(board.A1).PopCount(), "a king in the corner attacks 3 squares")
		assert.False(t, board.KingAttackboard(board.E4).IsSet(board.E4), "a king never attacks its own square")
	})

	t.Run("KnightAttackboard", func(t *testing.T) {
		assert.Equal(t, 8, board.KnightAttackboard(board.E4).PopCount(), "a knight in the center attacks 8 squares")
		assert.Equal(t, 2, board.KnightAttackboard(board.A1).PopCount(), "a knight in the corner attacks 2 squares")
	})

	t.Run("RookAttackboard on an empty board covers the rank and file, excluding its own square", func(t *testing.T) {
		rot := board.NewRotatedBitboard(board.BitMask(board.E4))
		att := board.RookAttackboard(rot, board.E4)

		assert.Equal(t, 14, att.PopCount())
		assert.False(t, att.IsSet(board.E4))
		assert.True(t, att.IsSet(board.A4))
		assert.True(t, att.IsSet(board.E1))
	})

	t.Run("RookAttackboard stops at the first blocker in each direction", func(t *testing.T) {
		occ := board.BitMask(board.E4) | board.BitMask(board.E6) | board.BitMask(board.G4)
		rot := board.NewRotatedBitboard(occ)
		att := board.RookAttackboard(rot, board.E4)

		assert.True(t, att.IsSet(board.E5), "can reach the empty square just short of the blocker")
		assert.True(t, att.IsSet(board.E6), "can capture on the blocker's square")
		assert.False(t, att.IsSet(board.E7), "cannot see past the blocker")
		assert.True(t, att.IsSet(board.F4))
		assert.True(t, att.IsSet(board.G4))
		assert.False(t, att.IsSet(board.H4), "cannot see past the blocker on the other side")
	})

	t.Run("IsLightSquare alternates across adjacent squares", func(t *testing.T) {
		assert.NotEqual(t, board.IsLightSquare(board.A1), board.IsLightSquare(board.B1))
		assert.NotEqual(t, board.IsLightSquare(board.A1), board.IsLightSquare(board.A2))
		assert.Equal(t, board.IsLightSquare(board.A1), board.IsLightSquare(board.B2))
	})

	t.Run("PawnCaptureboard/PawnMoveboard respect color direction", func(t *testing.T) {
		white := board.BitMask(board.E4)
		assert.True(t, board.PawnMoveboard(0, board.White, white).IsSet(board.E5))
		assert.True(t, board.PawnCaptureboard(board.White, white).IsSet(board.D5))
		assert.True(t, board.PawnCaptureboard(board.White, white).IsSet(board.F5))

		black := board.BitMask(board.E5)
		assert.True(t, board.PawnMoveboard(0, board.Black, black).IsSet(board.E4))
		assert.True(t, board.PawnCaptureboard(board.Black, black).IsSet(board.D4))
		assert.True(t, board.PawnCaptureboard(board.Black, black).IsSet(board.F4))
	})
}
