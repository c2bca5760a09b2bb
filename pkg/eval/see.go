package eval

import "github.com/jprovost/brindle/pkg/board"

// attackersToSquare returns every piece of color c that attacks sq, given a (possibly
// hypothetical) occupancy bitboard. Used by SEE to walk a capture sequence without mutating
// the real position: each step simulates removing the attacker that just "moved" by clearing
// its bit from occ, which also exposes any sliding piece it was blocking (x-ray attacks).
func attackersToSquare(pos *board.Position, occ board.Bitboard, sq board.Square, c board.Color) board.Bitboard {
	rot := board.NewRotatedBitboard(occ)

	var att board.Bitboard
	att |= board.KnightAttackboard(sq) & pos.Piece(c, board.Knight)
	att |= board.KingAttackboard(sq) & pos.Piece(c, board.King)
	att |= board.BishopAttackboard(rot, sq) & (pos.Piece(c, board.Bishop) | pos.Piece(c, board.Queen))
	att |= board.RookAttackboard(rot, sq) & (pos.Piece(c, board.Rook) | pos.Piece(c, board.Queen))
	att |= board.PawnCaptureboard(c.Opponent(), board.BitMask(sq)) & pos.Piece(c, board.Pawn)
	return att & occ
}

// leastValuableAttacker returns the square and piece type of the cheapest piece of color c in
// attackers, the square SEE should "move" next in the swap sequence.
func leastValuableAttacker(pos *board.Position, attackers board.Bitboard, c board.Color) (board.Square, board.Piece, bool) {
	for _, p := range []board.Piece{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen, board.King} {
		bb := attackers & pos.Piece(c, p)
		if bb != 0 {
			return bb.LastPopSquare(), p, true
		}
	}
	return board.ZeroSquare, board.NoPiece, false
}

// SEE returns the static exchange evaluation of m, the net material gain in centipawns for
// the side to move after an optimal sequence of captures and recaptures on m.To. A negative
// value means the capture loses material even after every side recaptures optimally. Returns
// 0 for non-captures.
//
// Grounded on the classic swap-list algorithm: walk the attackers of the target square from
// least to most valuable, alternating sides, and fold the gain array back up assuming each
// side stops recapturing as soon as doing so would lose material.
func SEE(pos *board.Position, m board.Move) Score {
	if !m.IsCapture() {
		return 0
	}

	to := m.To
	mover := pos.Turn()

	occ := pos.Occupied() &^ board.BitMask(m.From)
	var captured board.Piece
	if m.Type == board.EnPassant {
		epc, _ := m.EnPassantCapture()
		occ &^= board.BitMask(epc)
		captured = board.Pawn
	} else {
		captured = m.Capture
	}

	var gain [32]Score
	depth := 0
	gain[0] = NominalValue(captured)
	attackerValue := NominalValue(m.Piece)
	if m.Type == board.CapturePromotion {
		// The pawn instantly becomes the promoted piece: the first gain includes the extra
		// value picked up by promoting, and whatever sits on the square afterwards (what a
		// recapture would take) is valued as the promoted piece, not the pawn.
		gain[0] += NominalValue(m.Promotion) - NominalValue(board.Pawn)
		attackerValue = NominalValue(m.Promotion)
	}
	side := mover.Opponent()

	for depth < len(gain)-1 {
		depth++
		gain[depth] = attackerValue - gain[depth-1]
		if Max(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		attackers := attackersToSquare(pos, occ, to, side)
		sq, piece, ok := leastValuableAttacker(pos, attackers, side)
		if !ok {
			break
		}

		occ &^= board.BitMask(sq)
		attackerValue = NominalValue(piece)
		side = side.Opponent()
	}

	// Fold back to front, but the deepest gain computed above only existed to decide whether
	// that last capture was worth making at all: it never feeds the final value, since a side
	// that would come out behind by capturing simply doesn't.
	for depth > 1 {
		depth--
		gain[depth-1] = -Max(-gain[depth-1], gain[depth])
	}
	return gain[0]
}
