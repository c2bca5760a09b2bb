package engine_test

import (
	"context"
	"testing"

	"github.com/jprovost/brindle/pkg/board"
	"github.com/jprovost/brindle/pkg/board/fen"
	"github.com/jprovost/brindle/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook(t *testing.T) {
	ctx := context.Background()

	book, err := engine.NewBook([]engine.Line{
		{"e2e4", "d7d5", "d2d4"},
		{"e2e4", "d7d6"},
		{"d2d4", "d7d6"},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		pos   string
		moves string
	}{
		{"initial position offers both book openings", fen.Initial, "E2E4 D2D4"},
		{"a line continues after the opponent's reply", "rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 1", "D7D6"},
		{"a position off any book line is empty", "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq - 0 1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := book.Find(ctx, tt.pos)
			assert.NoError(t, err)
			assert.Equal(t, tt.moves, board.PrintMoves(list))
		})
	}

	t.Run("NoBook never offers a move", func(t *testing.T) {
		list, err := engine.NoBook.Find(ctx, fen.Initial)
		assert.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("an illegal line is rejected at construction", func(t *testing.T) {
		_, err := engine.NewBook([]engine.Line{{"e2e5"}})
		assert.Error(t, err)
	})
}
