package eval

import "github.com/jprovost/brindle/pkg/board"

const (
	isolatedPenaltyMg Score = -5
	isolatedPenaltyEg Score = -15
	doubledPenaltyMg  Score = -10
	doubledPenaltyEg  Score = -25
)

// passedRankBonus scales the passed-pawn bonus by how far advanced the pawn is, from the
// mover's perspective (Rank2 barely counts, Rank7 is one step from promoting).
var passedRankBonusMg = [board.NumRanks]Score{0, 0, 5, 10, 20, 35, 55, 0}
var passedRankBonusEg = [board.NumRanks]Score{0, 0, 10, 20, 40, 70, 110, 0}

// pawnEntry is the cached result of evaluating both sides' pawn structure, keyed by
// Position.PawnHash. Mg/Eg are White-relative (Black's contribution already subtracted).
type pawnEntry struct {
	key    board.ZobristHash
	mg, eg Score
	passed [board.NumColors]board.Bitboard
}

// PawnCache memoizes pawn-structure evaluation by pawn-only Zobrist key. Pawn structure
// changes on only a small fraction of plies (pawn moves and captures), so caching it avoids
// re-deriving isolated/doubled/passed status on every node. One cache belongs to each search
// worker; it is never shared or synchronized, matching the worker's shared-nothing pawn state.
type PawnCache struct {
	entries []pawnEntry
	mask    uint64
	hits    uint64
	probes  uint64
}

// NewPawnCache returns a pawn cache with room for approximately size entries (rounded up to
// the next power of two).
func NewPawnCache(size int) *PawnCache {
	n := uint64(1)
	for int(n) < size {
		n <<= 1
	}
	return &PawnCache{entries: make([]pawnEntry, n), mask: n - 1}
}

// Probe returns the cached pawn-structure evaluation for pos, computing and storing it on a
// miss.
func (c *PawnCache) Probe(pos *board.Position) (mg, eg Score, passed [board.NumColors]board.Bitboard) {
	c.probes++
	key := pos.PawnHash()
	idx := uint64(key) & c.mask
	e := &c.entries[idx]
	if e.key == key {
		c.hits++
		return e.mg, e.eg, e.passed
	}

	mg, eg, passed = evaluatePawnStructure(pos)
	*e = pawnEntry{key: key, mg: mg, eg: eg, passed: passed}
	return mg, eg, passed
}

// HitRate returns the fraction of Probe calls served from cache, for diagnostics.
func (c *PawnCache) HitRate() float64 {
	if c.probes == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.probes)
}

func evaluatePawnStructure(pos *board.Position) (mg, eg Score, passed [board.NumColors]board.Bitboard) {
	white := pos.Piece(board.White, board.Pawn)
	black := pos.Piece(board.Black, board.Pawn)

	wmg, weg, wpassed := evaluateSidePawns(board.White, white, black)
	bmg, beg, bpassed := evaluateSidePawns(board.Black, black, white)

	return wmg - bmg, weg - beg, [board.NumColors]board.Bitboard{board.White: wpassed, board.Black: bpassed}
}

func evaluateSidePawns(side board.Color, own, enemy board.Bitboard) (mg, eg Score, passed board.Bitboard) {
	for bb := own; bb != 0; {
		sq := bb.PopIndex()
		f := sq.File()

		if own&board.AdjacentFiles(f) == 0 {
			mg += isolatedPenaltyMg
			eg += isolatedPenaltyEg
		}

		doubled := (own & board.BitFile(f)) &^ board.BitMask(sq)
		if doubled != 0 {
			mg += doubledPenaltyMg
			eg += doubledPenaltyEg
		}

		if enemy&board.FileAndAdjacent(f)&board.RanksAhead(side, sq.Rank()) == 0 {
			passed |= board.BitMask(sq)
			r := sq.Rank()
			if side == board.Black {
				r = board.NumRanks - 1 - r
			}
			mg += passedRankBonusMg[r]
			eg += passedRankBonusEg[r]
		}
	}
	return mg, eg, passed
}
