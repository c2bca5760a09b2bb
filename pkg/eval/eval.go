// Package eval contains static position evaluation: material, piece-square tables, pawn
// structure, king safety and mobility, tapered between midgame and endgame by remaining
// non-pawn material, plus static exchange evaluation for move ordering and quiescence pruning.
package eval

import "github.com/jprovost/brindle/pkg/board"

// Evaluator returns a static score for a position, relative to the side to move.
type Evaluator interface {
	Evaluate(pos *board.Position, pawns *PawnCache) Score
}

// Standard is the engine's tapered evaluator: material, piece-square placement, pawn
// structure (isolated/doubled/passed), mobility and a king-safety term, all interpolated by
// Phase between midgame and endgame weights.
type Standard struct {
	// Noise adds a small amount of randomness to each evaluation, set to the zero value (no
	// randomness) unless explicitly configured.
	Noise Random
}

func (s Standard) Evaluate(pos *board.Position, pawns *PawnCache) Score {
	phase := Phase(pos)

	var mg, eg Score
	for c := board.ZeroColor; c < board.NumColors; c++ {
		sign := Score(1)
		if c == board.Black {
			sign = -1
		}
		for p := board.Pawn; p < board.NumPieces; p++ {
			bb := pos.Piece(c, p)
			count := Score(bb.PopCount())
			if p != board.King {
				mg += sign * count * midgameValue[p]
				eg += sign * count * endgameValue[p]
			}
			for b := bb; b != 0; {
				sq := b.PopIndex()
				mg += sign * PieceSquareValue(0, c, p, sq)
				eg += sign * PieceSquareValue(totalPhase, c, p, sq)
			}
		}
	}

	pmg, peg, passed := pawns.Probe(pos)
	mg += pmg
	eg += peg

	mobilityBalance := mobility(pos, board.White) - mobility(pos, board.Black)
	mg += mobilityBalance
	eg += mobilityBalance

	bishopPairBalance := bishopPair(pos, board.White) - bishopPair(pos, board.Black)
	mg += bishopPairBalance
	eg += bishopPairBalance

	rook7thBalance := rookOnSeventh(pos, board.White) - rookOnSeventh(pos, board.Black)
	mg += rook7thBalance
	eg += rook7thBalance

	mg += kingSafety(pos, board.White, phase) - kingSafety(pos, board.Black, phase)
	eg += passedPawnPush(pos, board.White, passed[board.White]) - passedPawnPush(pos, board.Black, passed[board.Black])

	score := taper(phase, mg, eg)
	score += s.Noise.Evaluate(pos)

	if pos.Turn() == board.Black {
		score = -score
	}
	return score
}

const (
	mobilityWeight    Score = 2
	kingShieldBonus   Score = 8
	kingOpenFilePen   Score = -15
	rookOpenFileBonus Score = 10
	rookSemiOpenBonus Score = 5
	rookSeventhBonus  Score = 20
)

// bishopPair rewards c for holding both bishops.
func bishopPair(pos *board.Position, c board.Color) Score {
	if HasBishopPair(pos, c) {
		return BishopPairBonus
	}
	return 0
}

// seventhRank is the rank a rook must sit on to threaten the enemy's back-rank pawns/king:
// rank 7 for White, rank 2 for Black.
func seventhRank(c board.Color) board.Rank {
	if c == board.White {
		return board.Rank7
	}
	return board.Rank2
}

// rookOnSeventh rewards a rook of color c sitting on the enemy's second rank when it is
// actually dangerous there: the enemy king is trapped on its back rank, or enemy pawns still
// sit on that rank for the rook to harass.
func rookOnSeventh(pos *board.Position, c board.Color) Score {
	rank := seventhRank(c)
	rooks := pos.Piece(c, board.Rook) & board.BitRank(rank)
	if rooks == 0 {
		return 0
	}

	enemy := c.Opponent()
	backRank := board.Rank1
	if enemy == board.White {
		backRank = board.Rank8
	}

	kingTrapped := pos.KingSquare(enemy).Rank() == backRank
	enemyPawnsOnRank := pos.Piece(enemy, board.Pawn)&board.BitRank(rank) != 0

	if !kingTrapped && !enemyPawnsOnRank {
		return 0
	}
	return Score(rooks.PopCount()) * rookSeventhBonus
}

// mobility counts the pseudo-legal squares available to c's knights, bishops, rooks and
// queens, a cheap proxy for piece activity.
func mobility(pos *board.Position, c board.Color) Score {
	own := pos.Color(c)
	var count int
	for _, p := range []board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		for bb := pos.Piece(c, p); bb != 0; {
			sq := bb.PopIndex()
			count += (board.Attackboard(pos.Rotated(), sq, p) &^ own).PopCount()
		}
	}

	for bb := pos.Piece(c, board.Rook); bb != 0; {
		sq := bb.PopIndex()
		f := sq.File()
		pawns := pos.Piece(board.White, board.Pawn) | pos.Piece(board.Black, board.Pawn)
		if pawns&board.BitFile(f) == 0 {
			count += int(rookOpenFileBonus) / 2
		} else if pos.Piece(c, board.Pawn)&board.BitFile(f) == 0 {
			count += int(rookSemiOpenBonus) / 2
		}
	}

	return Score(count) * mobilityWeight / 2
}

// kingSafety rewards a pawn shield directly in front of the king and penalizes an open file
// running through it, tapering toward irrelevance as material (and mating danger) drains away
// in the endgame. It only applies once the king has committed to a wing (castled, or simply
// moved off its home square); a king still sitting at home has no shield to judge yet. It is
// also skipped when the king has boxed in its own rook in the corner, since the open-file
// penalty would otherwise reward exactly the structure that traps the rook.
func kingSafety(pos *board.Position, c board.Color, phase int) Score {
	if phase >= totalPhase {
		return 0
	}

	ksq := pos.KingSquare(c)
	if !hasCommittedToWing(c, ksq) || rookTrappedInCorner(pos, c, ksq) {
		return 0
	}

	shield := board.FileAndAdjacent(ksq.File()) & board.RanksAhead(c, ksq.Rank()) & pos.Piece(c, board.Pawn)

	var score Score
	score += Score(shield.PopCount()) * kingShieldBonus

	pawns := pos.Piece(board.White, board.Pawn) | pos.Piece(board.Black, board.Pawn)
	if pawns&board.BitFile(ksq.File()) == 0 {
		score += kingOpenFilePen
	}

	weight := Score(totalPhase-phase) * 100 / Score(totalPhase)
	return score * weight / 100
}

// hasCommittedToWing reports whether the king has left its home square. A bare Position
// carries no move history (board.Board.HasCastled needs that), so this approximates "has
// castled or moved toward a wing" from the static position alone: the shield/open-file terms
// only mean something once the king is no longer sitting on its starting square.
func hasCommittedToWing(c board.Color, ksq board.Square) bool {
	home := board.E1
	if c == board.Black {
		home = board.E8
	}
	return ksq != home
}

// rookTrappedInCorner detects the classic pattern where the king has walked in front of its
// own rook on the back rank (king g/h-file with the rook boxed into the corner, or the
// symmetric queenside case), leaving the rook unable to move.
func rookTrappedInCorner(pos *board.Position, c board.Color, ksq board.Square) bool {
	back := board.Rank1
	if c == board.Black {
		back = board.Rank8
	}
	if ksq.Rank() != back {
		return false
	}

	rooks := pos.Piece(c, board.Rook)
	switch ksq.File() {
	case board.FileG:
		return rooks&board.BitMask(board.NewSquare(board.FileH, back)) != 0
	case board.FileB:
		return rooks&board.BitMask(board.NewSquare(board.FileA, back)) != 0
	default:
		return false
	}
}

// passedPawnPush adds an endgame bonus for passed pawns the further they are from their own
// king's defensive reach is irrelevant here; it rewards advancement directly, since passed
// pawns matter most exactly when kings can no longer easily stop them.
func passedPawnPush(pos *board.Position, c board.Color, passed board.Bitboard) Score {
	var score Score
	for bb := passed; bb != 0; {
		sq := bb.PopIndex()
		r := sq.Rank()
		if c == board.Black {
			r = board.NumRanks - 1 - r
		}
		score += Score(r) * 4
	}
	return score
}
