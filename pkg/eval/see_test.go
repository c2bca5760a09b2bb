package eval_test

import (
	"testing"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSEE(t *testing.T) {
	kings := []board.Placement{
		{Square: board.A1, Color: board.White, Piece: board.King},
		{Square: board.H8, Color: board.Black, Piece: board.King},
	}

	newPosition := func(t *testing.T, extra ...board.Placement) *board.Position {
		t.Helper()
		pos, err := board.NewPosition(append(append([]board.Placement{}, kings...), extra...), board.White, 0, board.ZeroSquare, 0, 1)
		require.NoError(t, err)
		return pos
	}

	t.Run("a non-capture scores 0", func(t *testing.T) {
		pos := newPosition(t, board.Placement{Square: board.D4, Color: board.White, Piece: board.Rook})
		m := board.Move{Type: board.Push, From: board.D4, To: board.D5, Piece: board.Rook}
		assert.Equal(t, eval.Score(0), eval.SEE(pos, m))
	})

	t.Run("capturing a wholly undefended piece nets exactly its value", func(t *testing.T) {
		// No black piece other than the pawn itself attacks D7: the rook's capture is free.
		pos := newPosition(t,
			board.Placement{Square: board.D4, Color: board.White, Piece: board.Rook},
			board.Placement{Square: board.D7, Color: board.Black, Piece: board.Pawn},
		)
		m := board.Move{Type: board.Capture, From: board.D4, To: board.D7, Piece: board.Rook, Capture: board.Pawn}
		assert.Equal(t, eval.NominalValue(board.Pawn), eval.SEE(pos, m))
	})

	t.Run("capturing with a defended piece present loses the exchange", func(t *testing.T) {
		// D5 is defended exactly once, by the pawn on C6; nothing recaptures that pawn in turn.
		pos := newPosition(t,
			board.Placement{Square: board.D4, Color: board.White, Piece: board.Rook},
			board.Placement{Square: board.D5, Color: board.Black, Piece: board.Pawn},
			board.Placement{Square: board.C6, Color: board.Black, Piece: board.Pawn},
		)
		m := board.Move{Type: board.Capture, From: board.D4, To: board.D5, Piece: board.Rook, Capture: board.Pawn}
		want := eval.NominalValue(board.Pawn) - eval.NominalValue(board.Rook)
		assert.Equal(t, want, eval.SEE(pos, m))
	})

	t.Run("a capture-promotion values the captured piece at the promoted piece's strength", func(t *testing.T) {
		// A8 is otherwise undefended once the rook sitting there is captured.
		pos := newPosition(t,
			board.Placement{Square: board.B7, Color: board.White, Piece: board.Pawn},
			board.Placement{Square: board.A8, Color: board.Black, Piece: board.Rook},
		)
		m := board.Move{
			Type: board.CapturePromotion, From: board.B7, To: board.A8,
			Piece: board.Pawn, Capture: board.Rook, Promotion: board.Queen,
		}
		want := eval.NominalValue(board.Rook) + eval.NominalValue(board.Queen) - eval.NominalValue(board.Pawn)
		assert.Equal(t, want, eval.SEE(pos, m))
	})
}
