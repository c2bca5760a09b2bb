package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/jprovost/brindle/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"golang.org/x/exp/maps"
)

// pawnStructureCacheEntries sizes each worker's private pawn-structure cache. Workers do not
// share a cache since Position.PawnHash lookups are not synchronized.
const pawnStructureCacheEntries = 1 << 16

// aspirationDelta is the half-width of the initial aspiration window placed around the
// previous iteration's score. A fail-high or fail-low re-search doubles it and tries again
// before the window widens out to NegInf/Inf.
const aspirationDelta eval.Score = 25

// Iterative is a search harness for iterative deepening search, run across a small fleet of
// worker goroutines that share a single transposition table (a simplified Lazy SMP scheme).
// Workers are staggered across starting depths, so no more than half of them ever sit on the
// same depth at once, and every worker's completed iteration is a candidate result: the fleet
// reports whichever worker has reached the greatest (depth, score) pair, not a fixed worker.
type Iterative struct {
	Root search.Search
}

func (i *Iterative) Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, evaluator eval.Evaluator, opt Options) (Handle, <-chan search.PV) {
	tt.NewGeneration()

	workers := opt.Workers
	if workers <= 0 {
		workers = 1
	}

	out := make(chan search.PV, 1)
	h := &fleetHandle{
		init:    iox.NewAsyncCloser(),
		quit:    iox.NewAsyncCloser(),
		results: make(map[int]search.PV, workers),
	}

	history := b.History()
	ancestors := map[board.ZobristHash]int{}
	for _, e := range history {
		ancestors[e.Hash]++
	}
	turn := b.Turn()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		pos := b.Position().Clone()
		reps := make(map[board.ZobristHash]int, len(ancestors))
		for k, v := range ancestors {
			reps[k] = v
		}
		anc := make([]board.HistoryEntry, len(history))
		copy(anc, history)

		go func(id int) {
			defer wg.Done()
			h.process(ctx, i.Root, pos, tt, evaluator, reps, anc, opt, turn, out, id)
		}(w)
	}

	go func() {
		wg.Wait()
		h.init.Close()
		close(out)
	}()

	return h, out
}

// fleetHandle tracks the best candidate PV any worker has reported so far, keyed by worker id
// so a shallower worker's stale report never overwrites a deeper/better one already on record.
type fleetHandle struct {
	init, quit iox.AsyncCloser

	results map[int]search.PV
	best    search.PV
	mu      sync.Mutex
}

func (h *fleetHandle) process(ctx context.Context, root search.Search, pos *board.Position, tt search.TranspositionTable, evaluator eval.Evaluator, reps map[board.ZobristHash]int, ancestors []board.HistoryEntry, opt Options, turn board.Color, out chan search.PV, id int) {
	sctx := &search.Context{
		TT:          tt,
		Pawns:       eval.NewPawnCache(pawnStructureCacheEntries),
		Eval:        evaluator,
		Repetitions: reps,
		Ancestors:   ancestors,
	}

	var soft time.Duration
	var useSoft bool
	if id == 0 {
		// Only one worker registers the hard-limit timer; it calls the shared Handle's Halt,
		// which closes h.quit and stops every worker, so there is no need for each of them to
		// race to schedule their own.
		soft, useSoft = EnforceTimeControl(ctx, h, opt.TimeControl, turn)
	}

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	var total uint64
	var prevScore eval.Score
	havePrev := false

	depth := 1 + id%2 // staggered start: at most half the fleet ever shares a depth
	for !h.quit.IsClosed() {
		start := time.Now()

		nodes, score, moves, err := h.searchAspirated(wctx, root, sctx, pos, depth, havePrev, prevScore)
		if err != nil {
			if err == search.ErrHalted {
				return // Halt was called.
			}
			logw.Errorf(ctx, "Search failed on %v at depth=%v: %v", pos, depth, err)
			return
		}
		total += nodes
		prevScore, havePrev = score, true

		pv := search.PV{
			Depth: depth,
			Nodes: nodes,
			Score: score,
			Moves: moves,
			Time:  time.Since(start),
			Hash:  tt.Used(),
		}
		logw.Debugf(ctx, "Worker %v searched %v: %v", id, pos, pv)

		h.report(id, pv, out)

		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			h.quit.Close()
			return // halt: reached max depth
		}
		if opt.NodeLimit > 0 && total >= opt.NodeLimit {
			h.quit.Close()
			return // halt: exceeded node budget
		}
		if n, ok := eval.MateIn(score); ok && absInt(n)*2-1 <= depth {
			h.quit.Close()
			return // halt: forced mate found within full width search. Exact result.
		}
		if id == 0 && useSoft && soft < time.Since(start) {
			h.quit.Close()
			return // halt: exceeded soft time limit. Do not start new search.
		}
		depth++
	}
}

// searchAspirated runs one iteration with a narrow window centred on the previous iteration's
// score, re-searching at the same depth with a doubled window on fail-high/fail-low until the
// score lands strictly inside the window or the window has widened out to [NegInf, Inf].
// Depth 1, and any worker's very first iteration, has no prior score to center on and searches
// full width, matching classic aspiration-window practice.
func (h *fleetHandle) searchAspirated(ctx context.Context, root search.Search, sctx *search.Context, pos *board.Position, depth int, havePrev bool, prevScore eval.Score) (uint64, eval.Score, []board.Move, error) {
	if !havePrev || depth < 2 {
		sctx.Alpha, sctx.Beta = eval.NegInf, eval.Inf
		return root.Search(ctx, sctx, pos, depth)
	}

	delta := aspirationDelta
	alpha, beta := prevScore-delta, prevScore+delta

	var total uint64
	for {
		sctx.Alpha = eval.Max(alpha, eval.NegInf)
		sctx.Beta = eval.Min(beta, eval.Inf)

		nodes, score, moves, err := root.Search(ctx, sctx, pos, depth)
		total += nodes
		if err != nil {
			return total, score, moves, err
		}

		switch {
		case score <= alpha && sctx.Alpha > eval.NegInf:
			alpha -= delta
			delta *= 2
		case score >= beta && sctx.Beta < eval.Inf:
			beta += delta
			delta *= 2
		default:
			return total, score, moves, nil
		}
	}
}

// report folds pv into the fleet's shared results, recomputes the best candidate across every
// worker reporting so far by (depth, score), and forwards it downstream.
func (h *fleetHandle) report(id int, pv search.PV, out chan search.PV) {
	h.mu.Lock()
	h.results[id] = pv
	best := pv
	for _, cand := range maps.Values(h.results) {
		if better(cand, best) {
			best = cand
		}
	}
	h.best = best
	h.mu.Unlock()

	select {
	case <-out:
	default:
	}
	out <- best

	h.init.Close()
}

// better reports whether a is a stronger search result than b: deeper wins outright, and at
// equal depth the higher (always side-to-move-relative) score wins.
func better(a, b search.PV) bool {
	if a.Depth != b.Depth {
		return a.Depth > b.Depth
	}
	return a.Score > b.Score
}

func (h *fleetHandle) Halt() search.PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.best
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
