package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-voice/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-voice/internal/entity"
	"github.com/rocketscienceinc/tictactoe-voice/internal/listener"
	"github.com/rocketscienceinc/tictactoe-voice/internal/tictactoe"
)

const (
	statusCellOccupied = "Pole %d zajęte"
	statusInvalidCell  = "Nieprawidłowe pole: %d"
	statusGameFinished = "Gra zakończona. Zacznij nową grę."
	statusWinner       = "Gracz %s wygrywa!"
	statusDraw         = "Remis!"
)

type VoiceListener interface {
	Start()
	Stop(timeout time.Duration) bool
	Events() <-chan listener.Event
}

type SessionConfig struct {
	// NewGameOnFinish resets the board once the game-over notice is acknowledged.
	NewGameOnFinish bool
	ShutdownTimeout time.Duration
}

// GameSession - the single owner of the game. Engine state is only touched from the
// goroutine running Run, which handles one UI command or voice event at a time.
type GameSession struct {
	logger *slog.Logger

	engine    *tictactoe.Engine
	presenter Presenter
	voice     VoiceListener
	conf      SessionConfig

	closeOnce sync.Once
}

// NewGameSession - voice may be nil, the game is then played with UI input only.
func NewGameSession(logger *slog.Logger, presenter Presenter, voice VoiceListener, conf SessionConfig) *GameSession {
	return &GameSession{
		logger:    logger.With("component", "session"),
		engine:    tictactoe.NewEngine(),
		presenter: presenter,
		voice:     voice,
		conf:      conf,
	}
}

// Run - serves UI commands and voice events until ctx is done, the UI quits or closes
// its command channel. The listener is stopped before Run returns.
func (that *GameSession) Run(ctx context.Context, commands <-chan Command) error {
	log := that.logger.With("method", "Run")

	that.renderBoard()

	var events <-chan listener.Event
	if that.voice != nil {
		that.voice.Start()
		events = that.voice.Events()
	}

	defer that.Close()

	for {
		select {
		case <-ctx.Done():
			log.Info("session context canceled")
			return nil

		case cmd, ok := <-commands:
			if !ok || cmd.Kind == CommandQuit {
				log.Info("session closed by the UI")
				return nil
			}
			that.handleCommand(cmd)

		case event, ok := <-events:
			if !ok {
				log.Warn("voice input is no longer available")
				events = nil
				continue
			}
			that.Dispatch(event)
		}
	}
}

// Close - stops the listener, waiting at most ShutdownTimeout. Teardown goes on either way.
func (that *GameSession) Close() {
	that.closeOnce.Do(func() {
		if that.voice == nil {
			return
		}

		if !that.voice.Stop(that.conf.ShutdownTimeout) {
			that.logger.Warn("listener did not stop in time", "timeout", that.conf.ShutdownTimeout)
			return
		}

		that.logger.Info("listener stopped")
	})
}

// SubmitMove - the one entry point for moves, from the UI and from voice alike.
func (that *GameSession) SubmitMove(cell int) {
	log := that.logger.With("method", "SubmitMove", "cell", cell)

	result, err := that.engine.SubmitMove(cell)
	if err != nil {
		log.Debug("move rejected", "error", err)
		that.reject(cell, err)
		return
	}

	that.presenter.RenderCell(result.Cell, result.Player, CellPlayed)

	switch result.Outcome.Kind {
	case entity.Win:
		for _, index := range result.Outcome.Line {
			that.presenter.RenderCell(index, result.Outcome.Winner, CellWinning)
		}
		log.Info("game won", "winner", result.Outcome.Winner, "line", result.Outcome.Line)
		that.finish(fmt.Sprintf(statusWinner, result.Outcome.Winner))

	case entity.Draw:
		log.Info("game drawn")
		that.finish(statusDraw)

	case entity.InProgress:
		that.presenter.RenderTurn(result.Next)
	}
}

// Reset - starts a new game from any state.
func (that *GameSession) Reset() {
	that.engine.Reset()
	that.renderBoard()
}

// Board - a snapshot of the board.
func (that *GameSession) Board() entity.Board {
	return that.engine.Board()
}

func (that *GameSession) handleCommand(cmd Command) {
	switch cmd.Kind {
	case CommandMove:
		that.SubmitMove(cmd.Cell)
	case CommandReset:
		that.Reset()
	case CommandQuit:
	}
}

func (that *GameSession) reject(cell int, err error) {
	var occupied *apperror.CellOccupiedError

	switch {
	case errors.As(err, &occupied):
		that.presenter.RenderStatus(fmt.Sprintf(statusCellOccupied, occupied.Cell+1))
		that.presenter.HighlightOccupied(occupied.Cell, occupied.Owner)
	case errors.Is(err, apperror.ErrGameFinished):
		that.presenter.RenderStatus(statusGameFinished)
	case errors.Is(err, apperror.ErrInvalidCell):
		that.presenter.RenderStatus(fmt.Sprintf(statusInvalidCell, cell+1))
	default:
		that.presenter.RenderStatus(err.Error())
	}
}

func (that *GameSession) finish(text string) {
	that.presenter.NotifyGameOver(text)

	if that.conf.NewGameOnFinish {
		that.Reset()
		return
	}

	that.presenter.RenderStatus(text)
}

func (that *GameSession) renderBoard() {
	board := that.engine.Board()
	for cell, mark := range board {
		state := CellPlayed
		if mark == entity.EmptyCell {
			state = CellIdle
		}
		that.presenter.RenderCell(cell, mark, state)
	}

	that.presenter.RenderTurn(that.engine.Turn())
}
