package polyglot

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
	"github.com/jprovost/brindle/pkg/engine"
)

// entrySize is the size in bytes of a single Polyglot book record: key, move, weight, learn.
const entrySize = 16

// entry is one Polyglot book record, decoded.
type entry struct {
	move   board.Move
	weight uint16
}

// Book is an opening book read from a Polyglot (.bin) file. It satisfies engine.Book.
type Book struct {
	byKey map[uint64][]entry
}

var _ engine.Book = (*Book)(nil)

// Open reads and decodes every entry of a Polyglot book file into memory.
func Open(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return load(f)
}

// Close releases resources held by the book. Present for symmetry with Open; the in-memory
// Book itself holds nothing that needs releasing.
func (b *Book) Close() error {
	return nil
}

func load(r io.Reader) (*Book, error) {
	b := &Book{byKey: map[uint64][]entry{}}

	var raw [entrySize]byte
	for {
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading polyglot entry: %w", err)
		}

		key := binary.BigEndian.Uint64(raw[0:8])
		moveBits := binary.BigEndian.Uint16(raw[8:10])
		weight := binary.BigEndian.Uint16(raw[10:12])
		// learn data, raw[12:16], is not used by this engine.

		move, ok := decodeMove(moveBits)
		if !ok {
			continue // malformed or null move entry
		}
		b.byKey[key] = append(b.byKey[key], entry{move: move, weight: weight})
	}
	return b, nil
}

// decodeMove converts the 16-bit Polyglot move encoding into a Move. Polyglot lays squares
// out with file a=0..h=7; this engine numbers files the other way round (FileH=0..FileA=7),
// so every file nibble is flipped on the way in. Castling is encoded Polyglot-style as the
// king capturing its own rook and is converted to this engine's king-destination convention.
func decodeMove(data uint16) (board.Move, bool) {
	if data == 0 {
		return board.Move{}, false
	}

	toFile := int(data & 7)
	toRank := int((data >> 3) & 7)
	fromFile := int((data >> 6) & 7)
	fromRank := int((data >> 9) & 7)
	promo := int((data >> 12) & 7)

	from := board.NewSquare(board.File(7-fromFile), board.Rank(fromRank))
	to := board.NewSquare(board.File(7-toFile), board.Rank(toRank))

	switch {
	case from == board.E1 && to == board.H1:
		to = board.G1
	case from == board.E1 && to == board.A1:
		to = board.C1
	case from == board.E8 && to == board.H8:
		to = board.G8
	case from == board.E8 && to == board.A8:
		to = board.C8
	}

	m := board.Move{From: from, To: to}
	switch promo {
	case 1:
		m.Promotion = board.Knight
	case 2:
		m.Promotion = board.Bishop
	case 3:
		m.Promotion = board.Rook
	case 4:
		m.Promotion = board.Queen
	}
	return m, true
}

// maxDuplication bounds how many times a single move is repeated to approximate its weight,
// keeping a handful of heavily-weighted entries from blowing up the returned slice.
const maxDuplication = 16

// Find implements engine.Book. It looks up the position's Polyglot key and returns every
// legal candidate move, each repeated in proportion to its normalized weight so that a caller
// doing a plain uniform pick over the slice approximates Polyglot's own weighted selection,
// without requiring engine.Book's interface to carry weights. A book is keyed purely by hash
// and is read from an external binary file, so an entry can be a false hash match or simply
// stale for the position it is now being probed against; each candidate is re-matched and
// legality-checked against the live position before it is ever returned, the same pattern
// engine.NewBook uses to validate its own opening lines.
func (b *Book) Find(_ context.Context, position string) ([]board.Move, error) {
	pos, turn, _, _, err := fen.Decode(position)
	if err != nil {
		return nil, fmt.Errorf("invalid fen: %w", err)
	}

	entries := b.byKey[Hash(pos)]
	if len(entries) == 0 {
		return nil, nil
	}

	legal := make([]entry, 0, len(entries))
	for _, e := range entries {
		if isLegal(pos, turn, e.move) {
			legal = append(legal, e)
		}
	}
	if len(legal) == 0 {
		return nil, nil
	}

	sort.Slice(legal, func(i, j int) bool { return legal[i].weight > legal[j].weight })

	max := legal[0].weight
	var out []board.Move
	for _, e := range legal {
		n := 1
		if max > 0 {
			n = int(e.weight) * maxDuplication / int(max)
			if n < 1 {
				n = 1
			}
		}
		for i := 0; i < n; i++ {
			out = append(out, e.move)
		}
	}
	return out, nil
}

// isLegal reports whether candidate, decoded from a book entry keyed only on From/To/Promotion,
// matches a pseudo-legal move in pos and does not leave the mover's own king in check.
func isLegal(pos *board.Position, turn board.Color, candidate board.Move) bool {
	for _, m := range pos.PseudoLegalMoves() {
		if !m.Equals(candidate) {
			continue
		}

		clone := pos.Clone()
		clone.MakeMove(m)
		ok := !clone.IsAttacked(turn, clone.KingSquare(turn))
		return ok
	}
	return false
}
