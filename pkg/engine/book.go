package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
)

// Book represents an opening book.
type Book interface {
	// Find returns a list -- potentially empty -- of moves given a position. Once an empty
	// list is returned, the book should not be consulted again for the game.
	Find(ctx context.Context, fen string) ([]board.Move, error)
}

// Line represents an opening line: e2e4 d7d5.
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// NoBook is an empty opening book.
var NoBook = &book{moves: map[string][]board.Move{}}

// NewBook creates an opening book from a set of opening lines, recorded as algebraic move
// sequences from the initial position. For a binary Polyglot book, see the polyglot package.
func NewBook(lines []Line) (Book, error) {
	m := map[string]map[board.Move]bool{}
	for _, line := range lines {
		key := fen.Initial
		for _, str := range line {
			next, err := board.ParseMove(str)
			if err != nil {
				return nil, fmt.Errorf("invalid line '%v': %v", line, err)
			}

			pos, turn, noprogress, fullmoves, derr := fen.Decode(key)
			if derr != nil {
				return nil, fmt.Errorf("invalid line '%v': %v", line, derr)
			}

			found := false
			for _, candidate := range pos.PseudoLegalMoves() {
				if !candidate.Equals(next) {
					continue
				}

				pos.MakeMove(candidate)
				if pos.IsAttacked(turn, pos.KingSquare(turn)) {
					pos.UnmakeMove()
					return nil, fmt.Errorf("invalid line '%v': move %v not legal", line, next)
				}
				found = true

				if m[fenKey(key)] == nil {
					m[fenKey(key)] = map[board.Move]bool{}
				}
				m[fenKey(key)][candidate] = true

				if turn == board.Black {
					fullmoves++
				}
				key = fen.Encode(pos, turn.Opponent(), 0, fullmoves)
				_ = noprogress
				break
			}

			if !found {
				return nil, fmt.Errorf("invalid line '%v': move %v not found", line, next)
			}
		}
	}

	dedup := map[string][]board.Move{}
	for k, v := range m {
		var list []board.Move
		for move := range v {
			list = append(list, move)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Encode() < list[j].Encode() })
		dedup[k] = list
	}
	return &book{moves: dedup}, nil
}

type book struct {
	moves map[string][]board.Move // cropped fen -> []move
}

func (b *book) Find(ctx context.Context, fen string) ([]board.Move, error) {
	return b.moves[fenKey(fen)], nil
}

func fenKey(pos string) string {
	parts := strings.Split(pos, " ")
	return strings.Join(parts[:4], " ")
}
