package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
	"github.com/jprovost/brindle/pkg/engine/persist"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/jprovost/brindle/pkg/search"
	"github.com/jprovost/brindle/pkg/search/searchctl"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 89, 3)

// Options are search creation options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit. Overridden by search
	// options if provided.
	Depth uint
	// Hash is the transposition table size in MB. If zero, the engine will not use
	// a transposition table.
	Hash uint
	// Noise adds some millipawn randomness to the leaf evaluations.
	Noise uint
	// Workers is the default number of search worker goroutines sharing the transposition
	// table. If zero, the launcher's own default applies. Overridden by search options if
	// provided.
	Workers int
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, noise=%v, workers=%v}", o.Depth, o.Hash, o.Noise, o.Workers)
}

// Engine encapsulates game-playing logic, search and evaluation.
type Engine struct {
	name, author string

	launcher searchctl.Launcher
	factory  search.TranspositionTableFactory
	seed     int64
	opts     Options

	b        *board.Board
	tt       search.TranspositionTable
	evaluate eval.Standard
	active   searchctl.Handle
	persist  *persist.Store // optional, survives restarts; nil disables it entirely
	mu       sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithSeed configures the engine to use the given random seed for evaluation noise, instead
// of the default seed of zero.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithPersist configures the engine to consult and update a durable root-result cache across
// restarts, in addition to the in-memory transposition table.
func WithPersist(store *persist.Store) Option {
	return func(e *Engine) {
		e.persist = store
	}
}

func New(ctx context.Context, name, author string, root search.Search, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: &searchctl.Iterative{Root: root},
		factory:  search.NewTranspositionTable,
	}
	for _, fn := range opts {
		fn(e)
	}

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
}

func (e *Engine) SetNoise(millipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = millipawns
	e.evaluate = e.newEvaluator()
}

// Board returns a forked board.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Evaluator returns the engine's current static evaluator, reflecting the latest noise setting.
func (e *Engine) Evaluator() eval.Evaluator {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.evaluate
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMB, noise=%vcp", position, e.opts.Depth, e.opts.Hash, e.opts.Noise/10)

	_, _ = e.haltSearchIfActive(ctx)

	pos, _, _, _, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(pos)

	e.tt = search.NoTranspositionTable{}
	if e.opts.Hash > 0 {
		e.tt = e.factory(ctx, uint64(e.opts.Hash)<<20)
	}
	e.evaluate = e.newEvaluator()

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

func (e *Engine) newEvaluator() eval.Standard {
	var noise eval.Random
	if e.opts.Noise > 0 {
		noise = eval.NewRandom(int(e.opts.Noise)/10, e.seed) // millipawns to centipawns
	}
	return eval.Standard{Noise: noise}
}

// Move selects the given move, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	moves := e.b.Position().PseudoLegalMoves()
	for _, m := range moves {
		if !candidate.Equals(m) {
			continue
		}

		// Candidate is at least pseudo-legal.

		if !e.b.PushMove(m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		logw.Infof(ctx, "Move %v: %v", m, e.b)
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	m, ok := e.b.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze analyzes the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}
	if opt.Workers == 0 {
		opt.Workers = e.opts.Workers
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.b, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	position := fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
	if e.persist != nil {
		if rec, ok := e.persist.Load(position); ok {
			logw.Infof(ctx, "Persist hit %v: %v (depth=%v)", position, rec.Move, rec.Depth)
		}
	}

	handle, out := e.launcher.Launch(ctx, e.b.Fork(), e.tt, e.evaluate, opt)
	e.active = handle
	return e.persistResults(ctx, position, out), nil
}

// persistResults forwards every PV unchanged while recording the last one seen, then saves it
// to the durable store, if any, once the search completes (the channel closes).
func (e *Engine) persistResults(ctx context.Context, position string, in <-chan search.PV) <-chan search.PV {
	if e.persist == nil {
		return in
	}

	out := make(chan search.PV, 1)
	go func() {
		defer close(out)

		var last search.PV
		for pv := range in {
			last = pv
			out <- pv
		}
		if len(last.Moves) == 0 {
			return
		}
		rec := persist.Record{Move: last.Moves[0], Score: last.Score, Depth: last.Depth}
		if err := e.persist.Save(position, rec); err != nil {
			logw.Errorf(ctx, "Persist save failed for %v: %v", position, err)
		}
	}()
	return out
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.b, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}
