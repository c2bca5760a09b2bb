package polyglot

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packMove builds the 16-bit Polyglot move encoding from file/rank indices using Polyglot's
// own a=0..h=7, rank1=0..rank8=7 convention, the inverse of decodeMove.
func packMove(fromFile, fromRank, toFile, toRank, promo int) uint16 {
	return uint16(promo<<12 | fromRank<<9 | fromFile<<6 | toRank<<3 | toFile)
}

func TestDecodeMove(t *testing.T) {
	t.Run("a zero entry is a null move", func(t *testing.T) {
		_, ok := decodeMove(0)
		assert.False(t, ok)
	})

	t.Run("a plain push decodes file-flipped squares", func(t *testing.T) {
		m, ok := decodeMove(packMove(4, 1, 4, 3, 0))
		require.True(t, ok)
		assert.Equal(t, board.E2, m.From)
		assert.Equal(t, board.E4, m.To)
		assert.Equal(t, board.Piece(0), m.Promotion)
	})

	t.Run("a promotion decodes the promoted piece", func(t *testing.T) {
		m, ok := decodeMove(packMove(1, 6, 0, 7, 4))
		require.True(t, ok)
		assert.Equal(t, board.B7, m.From)
		assert.Equal(t, board.A8, m.To)
		assert.Equal(t, board.Queen, m.Promotion)
	})

	t.Run("white kingside castling remaps the rook-capture square to the king's destination", func(t *testing.T) {
		m, ok := decodeMove(packMove(4, 0, 7, 0, 0))
		require.True(t, ok)
		assert.Equal(t, board.E1, m.From)
		assert.Equal(t, board.G1, m.To)
	})

	t.Run("white queenside castling remaps similarly", func(t *testing.T) {
		m, ok := decodeMove(packMove(4, 0, 0, 0, 0))
		require.True(t, ok)
		assert.Equal(t, board.E1, m.From)
		assert.Equal(t, board.C1, m.To)
	})

	t.Run("black kingside castling remaps the rook-capture square", func(t *testing.T) {
		m, ok := decodeMove(packMove(4, 7, 7, 7, 0))
		require.True(t, ok)
		assert.Equal(t, board.E8, m.From)
		assert.Equal(t, board.G8, m.To)
	})

	t.Run("black queenside castling remaps the rook-capture square", func(t *testing.T) {
		m, ok := decodeMove(packMove(4, 7, 0, 7, 0))
		require.True(t, ok)
		assert.Equal(t, board.E8, m.From)
		assert.Equal(t, board.C8, m.To)
	})
}

func TestHash(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	t.Run("is self-consistent for the same position", func(t *testing.T) {
		assert.Equal(t, Hash(pos), Hash(pos))
	})

	t.Run("changes with the side to move", func(t *testing.T) {
		black, _, _, _, err := fen.Decode("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
		require.NoError(t, err)
		assert.NotEqual(t, Hash(pos), Hash(black))
	})

	t.Run("changes when a castling right is lost", func(t *testing.T) {
		noCastle, _, _, _, err := fen.Decode("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w kq - 0 1")
		require.NoError(t, err)
		assert.NotEqual(t, Hash(pos), Hash(noCastle))
	})

	t.Run("only mixes in the en-passant key when a pawn can actually capture", func(t *testing.T) {
		// Black just played d7d5; only White's pawn on e5 can actually capture en passant.
		real, _, _, _, err := fen.Decode("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
		require.NoError(t, err)
		withoutEP, _, _, _, err := fen.Decode("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq - 0 3")
		require.NoError(t, err)
		assert.NotEqual(t, Hash(withoutEP), Hash(real))

		// Here no White pawn sits beside the d6 square, so Polyglot ignores the ep square.
		noCapturer, _, _, _, err := fen.Decode("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
		require.NoError(t, err)
		ignoredEP, _, _, _, err := fen.Decode("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 3")
		require.NoError(t, err)
		assert.Equal(t, Hash(ignoredEP), Hash(noCapturer))
	})
}

func TestLoad(t *testing.T) {
	t.Run("decodes a well-formed entry", func(t *testing.T) {
		var buf bytes.Buffer
		var raw [entrySize]byte
		binary.BigEndian.PutUint64(raw[0:8], 0xC0FFEE)
		binary.BigEndian.PutUint16(raw[8:10], packMove(4, 1, 4, 3, 0)) // e2e4
		binary.BigEndian.PutUint16(raw[10:12], 42)
		buf.Write(raw[:])

		b, err := load(&buf)
		require.NoError(t, err)

		got := b.byKey[0xC0FFEE]
		require.Len(t, got, 1)
		assert.Equal(t, board.E2, got[0].move.From)
		assert.Equal(t, board.E4, got[0].move.To)
		assert.Equal(t, uint16(42), got[0].weight)
	})

	t.Run("skips a null-move entry", func(t *testing.T) {
		var buf bytes.Buffer
		var raw [entrySize]byte
		binary.BigEndian.PutUint64(raw[0:8], 1)
		buf.Write(raw[:])

		b, err := load(&buf)
		require.NoError(t, err)
		assert.Empty(t, b.byKey)
	})

	t.Run("an empty stream yields an empty book", func(t *testing.T) {
		b, err := load(&bytes.Buffer{})
		require.NoError(t, err)
		assert.Empty(t, b.byKey)
	})
}

func TestIsLegal(t *testing.T) {
	// White king e1, rook e2 pinned by a black rook on e8; black king tucked away on h8.
	pos, err := board.NewPosition([]board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E2, Color: board.White, Piece: board.Rook},
		{Square: board.E8, Color: board.Black, Piece: board.Rook},
		{Square: board.H8, Color: board.Black, Piece: board.King},
	}, board.White, 0, board.ZeroSquare, 0, 1)
	require.NoError(t, err)

	t.Run("a move that breaks a pin is illegal", func(t *testing.T) {
		assert.False(t, isLegal(pos, board.White, board.Move{From: board.E2, To: board.D2}))
	})

	t.Run("a move that stays on the pinning file is legal", func(t *testing.T) {
		assert.True(t, isLegal(pos, board.White, board.Move{From: board.E2, To: board.E3}))
	})

	t.Run("a move not found among pseudo-legal moves is illegal", func(t *testing.T) {
		// A rook cannot reach f3 from e2; no pseudo-legal move will ever match this candidate.
		assert.False(t, isLegal(pos, board.White, board.Move{From: board.E2, To: board.F3}))
	})
}

func TestFind(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil when the position's key is unknown", func(t *testing.T) {
		b := &Book{byKey: map[uint64][]entry{}}
		moves, err := b.Find(ctx, fen.Initial)
		require.NoError(t, err)
		assert.Nil(t, moves)
	})

	t.Run("returns nil when every candidate is illegal", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode(fen.Initial)
		require.NoError(t, err)

		b := &Book{byKey: map[uint64][]entry{
			Hash(pos): {{move: board.Move{From: board.E2, To: board.E5}, weight: 10}},
		}}
		moves, err := b.Find(ctx, fen.Initial)
		require.NoError(t, err)
		assert.Nil(t, moves)
	})

	t.Run("weights the returned moves by their proportion of the heaviest entry", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode(fen.Initial)
		require.NoError(t, err)

		e4 := board.Move{From: board.E2, To: board.E4}
		d4 := board.Move{From: board.D2, To: board.D4}
		b := &Book{byKey: map[uint64][]entry{
			Hash(pos): {{move: d4, weight: 5}, {move: e4, weight: 10}},
		}}

		moves, err := b.Find(ctx, fen.Initial)
		require.NoError(t, err)
		require.Len(t, moves, 24)

		var e4n, d4n int
		for _, m := range moves {
			switch {
			case m.Equals(e4):
				e4n++
			case m.Equals(d4):
				d4n++
			}
		}
		assert.Equal(t, 16, e4n, "the heaviest entry is repeated maxDuplication times")
		assert.Equal(t, 8, d4n, "a half-weight entry is repeated half as often")
	})
}
