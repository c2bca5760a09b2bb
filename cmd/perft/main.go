// perft is a movegen debugging tools. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
	"github.com/seekerror/logw"
	"time"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	pos, _, _, _, err := fen.Decode(*position)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen '%v': %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		start := time.Now()
		nodes := search(pos, i, *divide && i == *depth)
		duration := time.Since(start)

		println(fmt.Sprintf("perft,%v,%v,%v,%v", *position, i, nodes, duration.Microseconds()))
	}
}

func search(pos *board.Position, depth int, d bool) int64 {
	if depth == 0 {
		return 1
	}

	mover := pos.Turn()

	var l board.List
	pos.GenerateMoves(&l)

	var nodes int64
	for _, m := range l.Slice() {
		pos.MakeMove(m)
		if !pos.IsAttacked(mover, pos.KingSquare(mover)) {
			count := search(pos, depth-1, false)
			if d {
				println(fmt.Sprintf("%v: %v", m, count))
			}
			nodes += count
		}
		pos.UnmakeMove()
	}
	return nodes
}
