package board_test

import (
	"testing"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	t.Run("initial position has 20 legal moves", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode(fen.Initial)
		require.NoError(t, err)

		assert.Len(t, pos.PseudoLegalMoves(), 20)
		assert.Len(t, pos.LegalMoves(), 20)
	})

	t.Run("make/unmake is reversible for every legal move", func(t *testing.T) {
		tests := []string{
			fen.Initial,
			"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", // kiwipete
			"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
			"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2", // en passant available
		}

		for _, tt := range tests {
			pos, _, _, _, err := fen.Decode(tt)
			require.NoError(t, err)

			before := pos.String()
			for _, m := range pos.PseudoLegalMoves() {
				pos.MakeMove(m)
				pos.UnmakeMove()
				assert.Equal(t, before, pos.String(), "move %v did not reverse cleanly from %v", m, tt)
			}
		}
	})

	t.Run("node count by depth matches a hand-verified perft", func(t *testing.T) {
		// Perft(1) and Perft(2) from the initial position are well-known fixed points for any
		// legal move generator: https://www.chessprogramming.org/Perft_Results.
		pos, _, _, _, err := fen.Decode(fen.Initial)
		require.NoError(t, err)

		assert.Equal(t, 20, perft(pos, 1))
		assert.Equal(t, 400, perft(pos, 2))
	})

	t.Run("HasInsufficientMaterial", func(t *testing.T) {
		kings := []board.Placement{
			{Square: board.D1, Color: board.White, Piece: board.King},
			{Square: board.D8, Color: board.Black, Piece: board.King},
		}

		tests := []struct {
			name  string
			extra []board.Placement
			want  bool
		}{
			{"bare kings", nil, true},
			{"king and minor vs king", []board.Placement{{Square: board.F3, Color: board.White, Piece: board.Knight}}, true},
			{
				"king and two knights vs king",
				[]board.Placement{
					{Square: board.F3, Color: board.White, Piece: board.Knight},
					{Square: board.B5, Color: board.White, Piece: board.Knight},
				},
				false,
			},
			{
				// F3 and C6 are both light squares.
				"same-colored bishops both sides",
				[]board.Placement{
					{Square: board.F3, Color: board.White, Piece: board.Bishop},
					{Square: board.C6, Color: board.Black, Piece: board.Bishop},
				},
				true,
			},
			{
				// F3 is light, C1 is dark.
				"opposite-colored bishops both sides",
				[]board.Placement{
					{Square: board.F3, Color: board.White, Piece: board.Bishop},
					{Square: board.C1, Color: board.Black, Piece: board.Bishop},
				},
				false,
			},
			{
				// F3 and B5 are both light squares.
				"same-color bishop pair vs bare king",
				[]board.Placement{
					{Square: board.F3, Color: board.White, Piece: board.Bishop},
					{Square: board.B5, Color: board.White, Piece: board.Bishop},
				},
				true,
			},
			{
				// F3 is light, A1 is dark.
				"opposite-color bishop pair vs bare king",
				[]board.Placement{
					{Square: board.F3, Color: board.White, Piece: board.Bishop},
					{Square: board.A1, Color: board.White, Piece: board.Bishop},
				},
				false,
			},
			{"rook on board is always sufficient", []board.Placement{{Square: board.F3, Color: board.White, Piece: board.Rook}}, false},
			{"pawn on board is always sufficient", []board.Placement{{Square: board.F3, Color: board.White, Piece: board.Pawn}}, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				pos, err := board.NewPosition(append(append([]board.Placement{}, kings...), tt.extra...), board.White, 0, board.ZeroSquare, 0, 1)
				require.NoError(t, err)

				assert.Equal(t, tt.want, pos.HasInsufficientMaterial())
			})
		}
	})

	t.Run("IsChecked and IsAttacked agree on a simple check", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/3KR3 b - - 0 1")
		require.NoError(t, err)

		assert.True(t, pos.IsChecked(board.Black))
		assert.True(t, pos.IsAttacked(board.Black, pos.KingSquare(board.Black)))
		assert.False(t, pos.IsChecked(board.White))
	})

	t.Run("MakeMove/UnmakeMove restore castling rights and en passant", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode("rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2")
		require.NoError(t, err)

		castling := pos.Castling()
		ep, hasEp := pos.EnPassant()
		require.True(t, hasEp)

		var m board.Move
		for _, cand := range pos.PseudoLegalMoves() {
			if cand.Piece == board.Knight {
				m = cand
				break
			}
		}
		require.False(t, m.IsNone())

		pos.MakeMove(m)
		pos.UnmakeMove()

		assert.Equal(t, castling, pos.Castling())
		gotEp, gotHasEp := pos.EnPassant()
		assert.Equal(t, hasEp, gotHasEp)
		assert.Equal(t, ep, gotEp)
	})

	t.Run("rejects duplicate placements and missing/adjacent kings", func(t *testing.T) {
		_, err := board.NewPosition([]board.Placement{
			{Square: board.E1, Color: board.White, Piece: board.King},
			{Square: board.E1, Color: board.Black, Piece: board.Queen},
		}, board.White, 0, board.ZeroSquare, 0, 1)
		assert.Error(t, err)

		_, err = board.NewPosition([]board.Placement{
			{Square: board.E1, Color: board.White, Piece: board.King},
		}, board.White, 0, board.ZeroSquare, 0, 1)
		assert.Error(t, err)

		_, err = board.NewPosition([]board.Placement{
			{Square: board.E1, Color: board.White, Piece: board.King},
			{Square: board.E2, Color: board.Black, Piece: board.King},
		}, board.White, 0, board.ZeroSquare, 0, 1)
		assert.Error(t, err)
	})
}

// perft counts the leaf nodes reachable from pos within depth plies, recursing over legal
// moves only (pseudo-legal moves that leave the mover's own king in check are excluded).
func perft(pos *board.Position, depth int) int {
	if depth == 0 {
		return 1
	}

	mover := pos.Turn()
	nodes := 0
	for _, m := range pos.PseudoLegalMoves() {
		pos.MakeMove(m)
		if !pos.IsAttacked(mover, pos.KingSquare(mover)) {
			nodes += perft(pos, depth-1)
		}
		pos.UnmakeMove()
	}
	return nodes
}
