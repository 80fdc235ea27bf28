package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMark_Opponent(t *testing.T) {
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
}

func TestIsValidCell(t *testing.T) {
	assert.True(t, IsValidCell(0))
	assert.True(t, IsValidCell(8))
	assert.False(t, IsValidCell(-1))
	assert.False(t, IsValidCell(9))
}

func TestBoard_Outcome(t *testing.T) {
	t.Run("Returns Win with the line when Player X wins", func(t *testing.T) {
		// Given: a board where Player X has the top row
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerO, PlayerO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: determining the outcome
		outcome := board.Outcome()

		// Then: Player X wins with the top row
		assert.Equal(t, Outcome{Kind: Win, Winner: PlayerX, Line: [3]int{0, 1, 2}}, outcome)
	})

	t.Run("Returns Win when Player O holds a diagonal", func(t *testing.T) {
		// Given: a board where Player O has the anti-diagonal
		board := Board{
			PlayerX, PlayerX, PlayerO,
			EmptyCell, PlayerO, EmptyCell,
			PlayerO, EmptyCell, PlayerX,
		}

		// When: determining the outcome
		outcome := board.Outcome()

		// Then: Player O wins with cells 2, 4, 6
		assert.Equal(t, Outcome{Kind: Win, Winner: PlayerO, Line: [3]int{2, 4, 6}}, outcome)
	})

	t.Run("Returns Draw when the board is full", func(t *testing.T) {
		// Given: a full board without three in a row
		board := Board{
			PlayerX, PlayerO, PlayerX,
			PlayerO, PlayerX, PlayerO,
			PlayerO, PlayerX, PlayerO,
		}

		// When: determining the outcome
		outcome := board.Outcome()

		// Then: it is a draw
		assert.Equal(t, Draw, outcome.Kind)
		assert.True(t, board.IsFull())
	})

	t.Run("Returns InProgress when the game continues", func(t *testing.T) {
		// Given: a partially filled board
		board := Board{
			PlayerX, PlayerO, EmptyCell,
			EmptyCell, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerO,
		}

		// When: determining the outcome
		outcome := board.Outcome()

		// Then: the game is still in progress
		assert.Equal(t, InProgress, outcome.Kind)
		assert.False(t, board.IsFull())
	})
}
