// Package searchctl wires a search.Search implementation to a time control and a fleet of
// worker goroutines sharing a transposition table, presenting the engine with a single
// Launcher/Handle pair regardless of how many workers are actually searching underneath.
package searchctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/jprovost/brindle/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Options hold dynamic search options. The user may change these on a particular search.
type Options struct {
	// DepthLimit, if set, limits the search to the given ply depth. Zero means no limit.
	DepthLimit lang.Optional[uint]
	// TimeControl, if set, limits the search to the given time parameters.
	TimeControl lang.Optional[TimeControl]
	// NodeLimit, if set, halts the search once a worker's completed iterations together have
	// searched at least this many nodes. Zero means no limit.
	NodeLimit uint64
	// Workers is the number of goroutines to search with, sharing the transposition table in
	// a Lazy-SMP scheme. Zero defaults to 1.
	Workers int
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	if o.Workers > 1 {
		ret = append(ret, fmt.Sprintf("workers=%v", o.Workers))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher is an interface for managing searches.
type Launcher interface {
	// Launch a new search from the given position. It expects an exclusive (forked) board and
	// returns a PV channel for iteratively deeper searches. If the search is exhausted, the
	// channel is closed. The search can be stopped at any time.
	Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, eval eval.Evaluator, opt Options) (Handle, <-chan search.PV)
}

// Handle is an interface for the engine to manage searches. The engine is expected to spin off
// searches with forked boards and close/abandon them when no longer needed. This design keeps
// stopping conditions and re-synchronization trivial.
type Handle interface {
	// Halt halts the search, if running. Idempotent.
	Halt() search.PV
}
