package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-voice/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-voice/internal/entity"
)

// MoveResult - what an accepted move did to the game.
type MoveResult struct {
	Cell    int
	Player  entity.Mark
	Outcome entity.Outcome
	// Next is the player to move, empty once the game is finished.
	Next entity.Mark
}

// Engine - the turn state machine. It is not safe for concurrent use: one owner drives it.
type Engine struct {
	board    entity.Board
	turn     entity.Mark
	finished bool
}

func NewEngine() *Engine {
	return &Engine{
		turn: entity.PlayerX,
	}
}

// SubmitMove - places the current player's mark on the cell.
func (that *Engine) SubmitMove(cell int) (MoveResult, error) {
	if that.finished {
		return MoveResult{}, apperror.ErrGameFinished
	}

	if err := that.validateMove(cell); err != nil {
		return MoveResult{}, fmt.Errorf("invalid turn: %w", err)
	}

	player := that.turn
	that.board[cell] = player

	result := MoveResult{
		Cell:    cell,
		Player:  player,
		Outcome: that.board.Outcome(),
	}

	that.updateGameStatus(result.Outcome)
	result.Next = that.Turn()

	return result, nil
}

// Reset - clears the board and gives the first move to X, whatever the state was.
func (that *Engine) Reset() {
	that.board = entity.Board{}
	that.turn = entity.PlayerX
	that.finished = false
}

// Board - returns a copy, callers never see the live array.
func (that *Engine) Board() entity.Board {
	return that.board
}

// Turn - returns the player to move, or an empty mark when the game is finished.
func (that *Engine) Turn() entity.Mark {
	if that.finished {
		return entity.EmptyCell
	}
	return that.turn
}

func (that *Engine) IsFinished() bool {
	return that.finished
}

func (that *Engine) validateMove(cell int) error {
	if !entity.IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if owner := that.board[cell]; owner != entity.EmptyCell {
		return &apperror.CellOccupiedError{Cell: cell, Owner: owner}
	}

	return nil
}

func (that *Engine) updateGameStatus(outcome entity.Outcome) {
	switch outcome.Kind {
	case entity.Win, entity.Draw:
		that.finished = true
	case entity.InProgress:
		that.turn = that.turn.Opponent()
	}
}
