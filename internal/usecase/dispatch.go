package usecase

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-voice/internal/command"
	"github.com/rocketscienceinc/tictactoe-voice/internal/listener"
)

const statusUnrecognized = "Nie rozpoznano: '%s'"

// Dispatch - applies one listener event in the session's goroutine. Status events only
// change the status line; utterances become moves when they parse.
func (that *GameSession) Dispatch(event listener.Event) {
	switch event.Kind {
	case listener.StatusUpdate:
		that.presenter.RenderStatus(event.Text)

	case listener.UtteranceRecognized:
		cell, ok := command.Parse(event.Text)
		if !ok {
			that.presenter.RenderStatus(fmt.Sprintf(statusUnrecognized, event.Text))
			return
		}

		that.logger.Debug("voice move", "utterance", event.Text, "cell", cell)
		that.SubmitMove(cell)
	}
}
