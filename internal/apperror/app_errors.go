package apperror

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-voice/internal/entity"
)

var (
	ErrGameFinished = errors.New("game is already finished")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")
)

// CellOccupiedError - rejection of a move on a taken cell, carries who owns it.
type CellOccupiedError struct {
	Cell  int
	Owner entity.Mark
}

func (that *CellOccupiedError) Error() string {
	return fmt.Sprintf("%s: cell %d taken by %s", ErrCellOccupied, that.Cell, that.Owner)
}

func (that *CellOccupiedError) Is(target error) bool {
	return target == ErrCellOccupied
}
