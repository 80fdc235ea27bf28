package usecase

import "github.com/rocketscienceinc/tictactoe-voice/internal/entity"

type CellState int

const (
	CellIdle CellState = iota
	CellPlayed
	CellWinning
	CellOccupied
)

func (that CellState) String() string {
	switch that {
	case CellPlayed:
		return "played"
	case CellWinning:
		return "winning"
	case CellOccupied:
		return "occupied"
	default:
		return "idle"
	}
}

// Presenter - the UI. All calls come from the session's goroutine.
type Presenter interface {
	RenderCell(cell int, mark entity.Mark, state CellState)
	// RenderStatus shows a helper line under the current turn.
	RenderStatus(text string)
	// RenderTurn shows whose turn it is and clears the helper line.
	RenderTurn(player entity.Mark)
	// NotifyGameOver blocks until the user acknowledges it.
	NotifyGameOver(text string)
	// HighlightOccupied flags a taken cell; the presenter reverts it to the owner's look on its own timer.
	HighlightOccupied(cell int, owner entity.Mark)
}

type CommandKind int

const (
	CommandMove CommandKind = iota
	CommandReset
	CommandQuit
)

// Command - direct UI input.
type Command struct {
	Kind CommandKind
	Cell int
}

func Move(cell int) Command {
	return Command{Kind: CommandMove, Cell: cell}
}
