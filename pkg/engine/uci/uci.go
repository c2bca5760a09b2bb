// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
	"github.com/jprovost/brindle/pkg/engine"
	"github.com/jprovost/brindle/pkg/eval"
	"github.com/jprovost/brindle/pkg/search"
	"github.com/jprovost/brindle/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// Option is an UCI driver option.
type Option func(*options)

type options struct {
	useBook bool
	book    engine.Book
	rand    *rand.Rand
}

// UseBook instructs the driver to use the given opening book.
func UseBook(book engine.Book, seed int64) Option {
	return func(opt *options) {
		opt.useBook = true
		opt.book = book
		opt.rand = rand.New(rand.NewSource(seed))
	}
}

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e   *engine.Engine
	opt options

	out chan<- string

	active       atomic.Bool    // user is waiting for engine to move
	ponder       chan search.PV // chan for intermediate search information
	lastPosition string         // last position line (empty if no last position)

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string, opts ...Option) (*Driver, <-chan string) {
	var opt options
	for _, fn := range opts {
		fn(&opt)
	}

	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		opt:    opt,
		out:    out,
		ponder: make(chan search.PV, 400),
		quit:   make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	// * uci
	//
	//	tell engine to use the uci (universal chess interface),
	//	this will be send once as a first command after program boot
	//	to tell the engine to switch to uci mode.
	//	After receiving the uci command the engine must identify itself with the "id" command
	//	and sent the "option" commands to tell the GUI which engine settings the engine supports if any.
	//	After that the engine should sent "uciok" to acknowledge the uci mode.
	//	If no uciok is sent within a certain time period, the engine task will be killed by the GUI.

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	if d.opt.book != nil {
		d.out <- fmt.Sprintf("option name OwnBook type check default %v", d.opt.useBook)
	}
	d.out <- "option name Hash type spin default 0 min 0 max 65536"
	d.out <- "option name Noise type spin default 0 min 0 max 1000"

	// * uciok
	//
	//	Must be sent after the id and optional options to tell the GUI that the engine
	//	has sent all infos and is ready in uci mode.

	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Split(strings.TrimSpace(line), " ")
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				// * isready / readyok
				//
				//  Used to synchronize the engine with the GUI; must always be answered.

				d.out <- "readyok"

			case "debug":
				// * debug [ on | off ]
				//
				//	switch the debug mode of the engine on and off. Not implemented.

			case "setoption":
				// * setoption name <id> [value <x>]

				var name, value string
				if len(args) > 1 {
					name = args[1]
				}
				if len(args) > 3 {
					value = args[3]
				}

				switch name {
				case "OwnBook":
					d.opt.useBook, _ = strconv.ParseBool(value)
				case "Hash":
					n, _ := strconv.Atoi(value)
					d.e.SetHash(uint(n))
				case "Noise":
					n, _ := strconv.Atoi(value)
					d.e.SetNoise(uint(n))
				}

			case "register":
				// * register
				//
				//	Not implemented; this engine is not distributed with registration.

			case "ucinewgame":
				// * ucinewgame
				//
				//	sent when the next search will be from a different game. The GUI should
				//	always send "isready" afterward; not relied on if absent.

				d.ensureInactive(ctx)
				d.lastPosition = ""

			case "position":
				// * position [fen <fenstring> | startpos ]  moves <move1> .... <movei>

				d.ensureInactive(ctx)

				if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
					// Continuation of game.

					moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
					for _, arg := range strings.Split(moves, " ") {
						if arg == "moves" {
							continue
						}

						if err := d.e.Move(ctx, arg); err != nil {
							logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
							return
						}
					}

					d.lastPosition = line
					break
				}

				// New position.

				position := fen.Initial
				if len(args) >= 7 && args[0] == "fen" {
					position = strings.Join(args[1:7], " ")
				}

				if err := d.e.Reset(ctx, position); err != nil {
					logw.Errorf(ctx, "Invalid position: %v", line)
					return
				}

				move := false
				for _, arg := range args {
					if arg == "moves" {
						move = true
						continue
					}
					if !move {
						continue
					}

					if err := d.e.Move(ctx, arg); err != nil {
						logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
						return
					}
				}
				d.lastPosition = line

			case "go":
				// * go [searchmoves ...] [ponder] [wtime x] [btime x] [winc x] [binc x]
				//       [movestogo x] [depth x] [nodes x] [mate x] [movetime x] [infinite]

				d.ensureInactive(ctx)

				var opt searchctl.Options
				var tc searchctl.TimeControl

				haveClock, haveIncrement, haveMovesToGo, haveMoveTime, infinite := false, false, false, false, false

				for i := 0; i < len(args); i++ {
					cmd := args[i]
					switch cmd {
					case "wtime", "btime", "winc", "binc", "movestogo", "depth", "movetime", "nodes":
						i++
						if i == len(args) {
							logw.Errorf(ctx, "No argument for %v: %v", cmd, line)
							return
						}
						n, err := strconv.Atoi(args[i])
						if err != nil {
							logw.Errorf(ctx, "Invalid argument for %v: %v", line, err)
							return
						}

						switch cmd {
						case "depth":
							opt.DepthLimit = lang.Some(uint(n))
						case "nodes":
							opt.NodeLimit = uint64(n)
						case "wtime":
							tc.White = time.Millisecond * time.Duration(n)
							haveClock = true
						case "btime":
							tc.Black = time.Millisecond * time.Duration(n)
							haveClock = true
						case "winc", "binc":
							tc.Increment = time.Millisecond * time.Duration(n)
							haveIncrement = true
						case "movestogo":
							tc.MovesToGo = n
							haveMovesToGo = true
						case "movetime":
							tc.MoveTime = time.Millisecond * time.Duration(n)
							haveMoveTime = true
						}

					case "infinite":
						infinite = true

					default:
						// silently ignore anything not handled (searchmoves, ponder, mate, ...).
					}
				}

				switch {
				case infinite:
					tc.Mode = searchctl.Infinite
					opt.TimeControl = lang.Some(tc)
				case haveMoveTime:
					tc.Mode = searchctl.FixedPerMove
					opt.TimeControl = lang.Some(tc)
				case haveMovesToGo:
					tc.Mode = searchctl.MovesToGo
					opt.TimeControl = lang.Some(tc)
				case haveIncrement:
					tc.Mode = searchctl.Increment
					opt.TimeControl = lang.Some(tc)
				case haveClock:
					tc.Mode = searchctl.SuddenDeath
					opt.TimeControl = lang.Some(tc)
				}

				if d.opt.useBook && d.opt.book != nil {
					// Use opening book if possible.

					moves, err := d.opt.book.Find(ctx, d.e.Position())
					if err != nil {
						logw.Errorf(ctx, "Failed to find book move for %v: %v", d.e.Position(), err)
						return
					}

					if len(moves) > 0 {
						winner := moves[d.opt.rand.Intn(len(moves))]
						pv := search.PV{Moves: []board.Move{winner}}

						d.active.Store(true)
						d.searchCompleted(ctx, pv)
						break
					} // else: no book move
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					return
				}
				d.active.Store(true)

				// Forward ponder info. Complete search if it ends, unless infinite.

				go func() {
					var last search.PV
					for pv := range out {
						last = pv
						d.ponder <- pv
					}
					if !infinite {
						d.searchCompleted(ctx, last)
					}
				}()

			case "stop":
				// * stop
				//
				//	stop calculating as soon as possible; must answer with "bestmove".

				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(ctx, pv)
				}

			case "ponderhit":
				// * ponderhit
				//
				//	the opponent played the pondered move; continue the running search
				//	normally (the engine does not distinguish ponder from normal search).

			case "quit":
				// * quit
				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case pv := <-d.ponder:
			// * info depth <x> score cp|mate <y> nodes <x> time <x> nps <x> pv ...

			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CAS(true, false) {
		if len(pv.Moves) > 0 {
			// * bestmove <move1> [ ponder <move2> ]

			d.out <- printPV(pv)
			d.out <- fmt.Sprintf("bestmove %v", strings.ToLower(pv.Moves[0].String()))
		} else {
			// No PV. Position is checkmate or stalemate. Send NullMove.

			d.out <- "bestmove 0000"
		}
	} // else: stale or duplicate result
}

func printPV(pv search.PV) string {
	// "info depth 2 score cp 214 nodes 2124 time 1242 nps 1710 pv e2e4 e7e5 g1f3"

	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	if n, ok := eval.MateIn(pv.Score); ok {
		parts = append(parts, fmt.Sprintf("score mate %v", n))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv")
		parts = append(parts, strings.ToLower(board.PrintMoves(pv.Moves)))
	}

	return strings.Join(parts, " ")
}
