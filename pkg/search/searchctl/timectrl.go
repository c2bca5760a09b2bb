package searchctl

import (
	"context"
	"fmt"
	"time"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Mode selects how TimeControl.Limits interprets its fields, matching the handful of clock
// conventions chess protocols actually use.
type Mode uint8

const (
	// SuddenDeath allots all remaining time to the rest of the game, with no further
	// increment or reset. The classic "game in N minutes" control.
	SuddenDeath Mode = iota
	// Increment is a Fischer/Bronstein-style clock: remaining time plus a fixed bonus added
	// after every move.
	Increment
	// MovesToGo is a tournament control: a fixed number of moves must be completed within the
	// remaining time, after which the clock resets (not modeled here; only the current
	// session is budgeted).
	MovesToGo
	// FixedPerMove allots an identical, small budget to every move regardless of remaining
	// time, as used by some correspondence and blitz analysis setups.
	FixedPerMove
	// Infinite disables the internal clock entirely; the search runs until halted externally
	// (analysis mode, or pondering on the opponent's time).
	Infinite
)

func (m Mode) String() string {
	switch m {
	case SuddenDeath:
		return "sudden-death"
	case Increment:
		return "increment"
	case MovesToGo:
		return "moves-to-go"
	case FixedPerMove:
		return "fixed-per-move"
	case Infinite:
		return "infinite"
	default:
		return "?"
	}
}

// TimeControl represents a clock's time-control parameters. Only the fields relevant to Mode
// are consulted by Limits.
type TimeControl struct {
	Mode Mode

	White, Black time.Duration // remaining time on each side's clock

	Increment time.Duration // Mode == Increment: bonus added back after each move
	MovesToGo int           // Mode == MovesToGo: moves left until the next time control
	MoveTime  time.Duration // Mode == FixedPerMove: exact budget for a single move
}

// assumedMovesRemaining is used whenever a control gives a total budget but no explicit move
// count, to turn "time left for the rest of the game" into "time left for this move".
const assumedMovesRemaining = 40

// Limits returns a soft and hard time budget for making a single move as the given color.
// Soft is the point after which no new iterative-deepening depth should be started; hard is
// the point at which a running search must be halted regardless of depth. Returns (0, 0) for
// Mode == Infinite, which the caller should treat as "no deadline".
func (t TimeControl) Limits(c board.Color) (time.Duration, time.Duration) {
	remainder := t.White
	if c == board.Black {
		remainder = t.Black
	}

	switch t.Mode {
	case Infinite:
		return 0, 0

	case FixedPerMove:
		if t.MoveTime <= 0 {
			return 0, 0
		}
		return t.MoveTime * 9 / 10, t.MoveTime

	case MovesToGo:
		moves := time.Duration(assumedMovesRemaining)
		if t.MovesToGo > 0 {
			moves = time.Duration(t.MovesToGo)
		}
		soft := remainder / (2 * moves)
		hard := 3 * soft
		return soft, capToRemainder(hard, remainder)

	case Increment:
		moves := time.Duration(assumedMovesRemaining / 2)
		soft := remainder/(2*moves) + t.Increment*4/5
		hard := remainder/moves + t.Increment
		return soft, capToRemainder(hard, remainder)

	default: // SuddenDeath
		moves := time.Duration(assumedMovesRemaining) + 1
		soft := remainder / (2 * moves)
		hard := 3 * soft
		return soft, capToRemainder(hard, remainder)
	}
}

// capToRemainder keeps a hard limit from ever claiming more than the clock actually has left,
// holding back a small safety margin against network/GC jitter before a flag falls.
func capToRemainder(hard, remainder time.Duration) time.Duration {
	margin := remainder / 20
	if ceiling := remainder - margin; ceiling > 0 && hard > ceiling {
		return ceiling
	}
	return hard
}

func (t TimeControl) String() string {
	switch t.Mode {
	case Infinite:
		return "infinite"
	case FixedPerMove:
		return fmt.Sprintf("movetime=%v", t.MoveTime)
	case Increment:
		return fmt.Sprintf("%.1f<>%.1f+%.1f", t.White.Seconds(), t.Black.Seconds(), t.Increment.Seconds())
	case MovesToGo:
		return fmt.Sprintf("%.1f<>%.1f[movestogo=%v]", t.White.Seconds(), t.Black.Seconds(), t.MovesToGo)
	default:
		return fmt.Sprintf("%.1f<>%.1f", t.White.Seconds(), t.Black.Seconds())
	}
}

// EnforceTimeControl schedules a hard-limit halt for the current move, if any. Returns the
// soft limit and whether one applies; Mode == Infinite (or no TimeControl set) returns false.
func EnforceTimeControl(ctx context.Context, h Handle, tc lang.Optional[TimeControl], turn board.Color) (time.Duration, bool) {
	c, ok := tc.V()
	if !ok || c.Mode == Infinite {
		return 0, false
	}

	soft, hard := c.Limits(turn)
	if hard <= 0 {
		return 0, false
	}
	time.AfterFunc(hard, func() {
		h.Halt()
	})

	logw.Debugf(ctx, "Time control limits for %v (%v): [%v; %v]", c, c.Mode, soft, hard)
	return soft, true
}
