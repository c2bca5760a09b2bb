package board

import "fmt"

// MoveType indicates the type of move. The no-progress counter is reset by any pawn move or
// capture (Push, Jump, EnPassant, Capture, Promotion, CapturePromotion); Normal piece moves and
// castling advance it.
type MoveType uint8

const (
	Normal MoveType = iota
	Push            // Pawn single push
	Jump            // Pawn two-square push
	EnPassant
	QueenSideCastle
	KingSideCastle
	Capture
	Promotion
	CapturePromotion
)

// Move represents a not-necessarily-legal move along with contextual metadata needed to
// make and unmake it without consulting the position. Fields beyond From/To/Promotion are
// redundant with the position at the time the move was generated, but carrying them avoids
// a second lookup during make/unmake and move ordering.
type Move struct {
	Type       MoveType
	From, To   Square
	Piece      Piece // piece being moved
	Promotion  Piece // desired piece for promotion, if any
	Capture    Piece // captured piece, if any (including en-passant victim)
}

// IsNone returns true iff the move is the reserved all-zero "no move" encoding.
func (m Move) IsNone() bool {
	return m == Move{}
}

// IsCapture returns true iff the move removes an enemy piece from the board.
func (m Move) IsCapture() bool {
	return m.Type == Capture || m.Type == CapturePromotion || m.Type == EnPassant
}

// IsPromotion returns true iff the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Type == Promotion || m.Type == CapturePromotion
}

// IsCastle returns true iff the move is a castling move.
func (m Move) IsCastle() bool {
	return m.Type == QueenSideCastle || m.Type == KingSideCastle
}

// IsQuiet returns true iff the move is neither a capture nor a promotion. Used by move
// ordering and late-move-reduction eligibility.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// CastlingRightsLost returns the castling rights forfeited by playing this move, derived
// from the squares it touches (king/rook origin, rook capture on a corner).
func (m Move) CastlingRightsLost() Castling {
	lost := RightsLostBySquare(m.From) | RightsLostBySquare(m.To)
	return lost
}

// EnPassantCapture returns the square of the pawn captured en passant, if this is such a move.
// The victim always sits on the file of the destination and the rank of the origin.
func (m Move) EnPassantCapture() (Square, bool) {
	if m.Type != EnPassant {
		return ZeroSquare, false
	}
	return NewSquare(m.To.File(), m.From.Rank()), true
}

// EnPassantTarget returns the en-passant target square created by this move (the square
// "behind" a pawn that just jumped two squares), or ZeroSquare if not a Jump.
func (m Move) EnPassantTarget() (Square, bool) {
	if m.Type != Jump {
		return ZeroSquare, false
	}
	if m.To.Rank() > m.From.Rank() {
		return NewSquare(m.From.File(), m.From.Rank()+1), true
	}
	return NewSquare(m.From.File(), m.From.Rank()-1), true
}

// CastlingRookMove returns the rook's from/to squares for a castling move.
func (m Move) CastlingRookMove() (from, to Square, ok bool) {
	switch {
	case m.Type == KingSideCastle && m.From == E1:
		return H1, F1, true
	case m.Type == KingSideCastle && m.From == E8:
		return H8, F8, true
	case m.Type == QueenSideCastle && m.From == E1:
		return A1, D1, true
	case m.Type == QueenSideCastle && m.From == E8:
		return A8, D8, true
	default:
		return ZeroSquare, ZeroSquare, false
	}
}

// ParseMove parses a move in pure algebraic coordinate notation, such as "a2a4" or "a7a8q".
// The parsed move carries no contextual information (piece, capture, type); callers resolve
// those by matching it with Equals against the position's generated moves.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to: '%v': %v", str, err)
	}

	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion: '%v'", str)
		}
		return Move{From: from, To: to, Promotion: promo}, nil
	}

	return Move{From: from, To: to}, nil
}

// Equals compares moves by the fields that make a move unique in a given position: the
// contextual fields (Piece, Capture, Type) are implied by From/To/Promotion there.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

func (m Move) String() string {
	if m.IsNone() {
		return "0000"
	}
	if m.Promotion.IsValid() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// packedMove is the 32-bit interchange encoding used by the transposition table: 6 bits
// from, 6 bits to, 4 bits promotion piece, reserved all-zero meaning "no move".
type packedMove uint32

// Encode packs the move into the 32-bit TT interchange format. Only From/To/Promotion
// survive the round trip; Type/Piece/Capture are re-derived from the position on decode.
func (m Move) Encode() uint32 {
	if m.IsNone() {
		return 0
	}
	return uint32(m.From) | uint32(m.To)<<6 | uint32(m.Promotion)<<12
}

// DecodeMove unpacks a 32-bit TT move encoding into its From/To/Promotion fields. The
// caller (the move selector) must re-resolve Type/Piece/Capture against the position
// before using it, typically by checking pseudo-legality.
func DecodeMove(v uint32) Move {
	if v == 0 {
		return Move{}
	}
	return Move{
		From:      Square(v & 0x3f),
		To:        Square((v >> 6) & 0x3f),
		Promotion: Piece((v >> 12) & 0xf),
	}
}
