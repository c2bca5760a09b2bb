package eval

import (
	"fmt"

	"github.com/jprovost/brindle/pkg/board"
)

// Score is a signed position or move score in centipawns. Evaluators and the search report it
// relative to the side to move, and the negamax search negates it at each ply; Unit converts
// a White-relative Score to a given color's point of view.
type Score int32

const (
	MinScore Score = -1_000_000
	MaxScore Score = 1_000_000

	NegInf Score = MinScore - 1
	Inf    Score = MaxScore + 1

	// MateScore is the score assigned to the side delivering checkmate at the current ply.
	// Search subtracts the ply count so that a faster mate always outscores a slower one.
	MateScore Score = MaxScore - 1000

	// DrawScore is the contempt-free evaluation of a known draw.
	DrawScore Score = 0
)

// Unit returns the signed unit for the color: 1 for White and -1 for Black. Multiplying a
// White-relative Score by Unit(turn) yields the score from turn's point of view.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}

// Crop clamps a Score into [MinScore, MaxScore].
func Crop(s Score) Score {
	switch {
	case s > MaxScore:
		return MaxScore
	case s < MinScore:
		return MinScore
	default:
		return s
	}
}

// Max returns the largest of the given scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smallest of the given scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}

// IsMate returns true iff the score represents a forced mate, in either direction.
func IsMate(s Score) bool {
	return s > MateScore-1000 || s < -(MateScore-1000)
}

// MateIn returns the number of full moves to deliver the mate encoded in s, and true iff s
// is a mate score. Negative means the side to move is mated.
func MateIn(s Score) (int, bool) {
	if !IsMate(s) {
		return 0, false
	}
	if s > 0 {
		plies := MateScore - s
		return int(plies+1) / 2, true
	}
	plies := MateScore + s
	return -int(plies+1) / 2, true
}

// ToTT converts a score relative to the current search root into one relative to the node
// being stored, so that a mate score written from one root remains meaningful when later
// read from a different root (the shared transposition table persists across the whole
// game). Non-mate scores pass through unchanged.
func ToTT(score Score, ply int) Score {
	switch {
	case IsMate(score) && score > 0:
		return score + Score(ply)
	case IsMate(score) && score < 0:
		return score - Score(ply)
	default:
		return score
	}
}

// FromTT is the inverse of ToTT: it rebases a node-relative score read out of the
// transposition table back to the current search root, using the ply at which the probe
// occurred.
func FromTT(score Score, ply int) Score {
	switch {
	case IsMate(score) && score > 0:
		return score - Score(ply)
	case IsMate(score) && score < 0:
		return score + Score(ply)
	default:
		return score
	}
}

func (s Score) String() string {
	if n, ok := MateIn(s); ok {
		return fmt.Sprintf("mate %d", n)
	}
	return fmt.Sprintf("%.2f", float64(s)/100)
}
