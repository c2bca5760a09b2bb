// Package polyglot reads Polyglot-format opening books: a file of 16-byte entries (position
// key, move, weight, learn). Open reads every entry into an in-memory map keyed by position
// key; lookups go through that map, so the file's sort order is not relied on and no binary
// search of the file is done.
//
// See: http://hgm.nubati.net/book_format.html
package polyglot

import "github.com/jprovost/brindle/pkg/board"

// randomTable holds the 781 pseudo-random 64-bit constants the Polyglot key is built from:
// 12 piece kinds * 64 squares, 4 castling rights, 8 en-passant files and one side-to-move key.
// Real-world Polyglot books are keyed against the constants published with the original
// Polyglot tool; this table is not that one. It is generated deterministically at init time
// by a splitmix64-style generator, which keeps every key reproducible across runs, but keys
// computed by Hash do not match those of a third-party .bin file unless that file was
// produced with this same generator.
var randomTable [781]uint64

const (
	pieceOffset    = 0
	castleOffset   = 768
	enPassantOffet = 772
	turnOffset     = 780
)

func init() {
	var s uint64 = 0x9E3779B97F4A7C15 // golden-ratio seed, same constant splitmix64 conventionally uses
	for i := range randomTable {
		s += 0x9E3779B97F4A7C15
		z := s
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		randomTable[i] = z ^ (z >> 31)
	}
}

// pieceKind returns the Polyglot piece index: 2*pieceType + color, pieceType ordered
// pawn..king and color black=0, white=1.
func pieceKind(c board.Color, p board.Piece) int {
	t := 0
	switch p {
	case board.Pawn:
		t = 0
	case board.Knight:
		t = 1
	case board.Bishop:
		t = 2
	case board.Rook:
		t = 3
	case board.Queen:
		t = 4
	case board.King:
		t = 5
	}
	color := 0
	if c == board.White {
		color = 1
	}
	return 2*t + color
}

// polySquare converts a Square into the Polyglot square index: rank*8+file, file a=0..h=7
// (the reverse of this package's own File numbering).
func polySquare(sq board.Square) int {
	return int(sq.Rank())*8 + (7 - int(sq.File()))
}

// Hash computes the Polyglot key for pos: XOR of the keys for every piece placement, the
// castling rights actually available, an en-passant key if and only if a pawn could actually
// capture onto the ep square, and the side-to-move key when White is on the move.
func Hash(pos *board.Position) uint64 {
	var h uint64

	for c := board.ZeroColor; c < board.NumColors; c++ {
		for p := board.Pawn; p < board.NumPieces; p++ {
			bb := pos.Piece(c, p)
			kind := pieceKind(c, p)
			for bb != 0 {
				sq := bb.PopIndex()
				h ^= randomTable[pieceOffset+64*kind+polySquare(sq)]
			}
		}
	}

	castling := pos.Castling()
	if castling.IsAllowed(board.WhiteKingSideCastle) {
		h ^= randomTable[castleOffset+0]
	}
	if castling.IsAllowed(board.WhiteQueenSideCastle) {
		h ^= randomTable[castleOffset+1]
	}
	if castling.IsAllowed(board.BlackKingSideCastle) {
		h ^= randomTable[castleOffset+2]
	}
	if castling.IsAllowed(board.BlackQueenSideCastle) {
		h ^= randomTable[castleOffset+3]
	}

	if ep, ok := pos.EnPassant(); ok && pawnCanCapture(pos, ep) {
		file := 7 - int(ep.File())
		h ^= randomTable[enPassantOffet+file]
	}

	if pos.Turn() == board.White {
		h ^= randomTable[turnOffset]
	}

	return h
}

// pawnCanCapture reports whether a pawn of the side to move actually threatens the en-passant square,
// matching Polyglot's convention of only mixing in the ep key when the capture is real.
func pawnCanCapture(pos *board.Position, ep board.Square) bool {
	mover := pos.Turn()
	capturers := pos.Piece(mover, board.Pawn)

	rank := ep.Rank()
	var originRank board.Rank
	if mover == board.White {
		originRank = rank - 1
	} else {
		originRank = rank + 1
	}

	for _, df := range []int{-1, 1} {
		f := int(ep.File()) + df
		if f < 0 || f > 7 {
			continue
		}
		sq := board.NewSquare(board.File(f), originRank)
		if capturers&board.BitMask(sq) != 0 {
			return true
		}
	}
	return false
}
