package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-voice/internal/entity"
	"github.com/rocketscienceinc/tictactoe-voice/internal/usecase"
)

const (
	turnLine       = "Tura gracza: %s"
	gameOverPrompt = "Koniec gry: %s (Enter - dalej)"
	unknownInput   = "Nieznane polecenie: %q (1-9 ruch, n nowa gra, q wyjście)"
)

type cellView struct {
	mark  entity.Mark
	state usecase.CellState
}

// Console - a text UI: draws the grid to out and reads commands, one per line, from in.
type Console struct {
	logger      *slog.Logger
	in          io.Reader
	revertAfter time.Duration

	mu     sync.Mutex
	out    io.Writer
	cells  [entity.BoardSize]cellView
	turn   entity.Mark
	status string
	ack    chan struct{}
	eof    chan struct{}

	// noticed gets a token when a game-over notice opens.
	noticed chan struct{}
}

func New(logger *slog.Logger, in io.Reader, out io.Writer, revertAfter time.Duration) *Console {
	return &Console{
		logger:      logger.With("component", "console"),
		in:          in,
		out:         out,
		revertAfter: revertAfter,
		eof:         make(chan struct{}),
		noticed:     make(chan struct{}, 1),
	}
}

// Commands - reads input until EOF or ctx is done. A line read while a game-over
// notice is open only acknowledges it. A command still waiting to be taken when a
// notice opens belongs to the finished game and is dropped.
func (that *Console) Commands(ctx context.Context) <-chan usecase.Command {
	commands := make(chan usecase.Command)

	go func() {
		defer close(commands)
		defer close(that.eof)

		scanner := bufio.NewScanner(that.in)
		for scanner.Scan() {
			if that.acknowledge() {
				continue
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			cmd, ok := parseLine(line)
			if !ok {
				that.RenderStatus(fmt.Sprintf(unknownInput, line))
				continue
			}

			select {
			case commands <- cmd:
			case <-that.noticed:
				that.logger.Debug("dropping command sent before game over", "line", line)
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			that.logger.Error("failed to read input", "error", err)
		}
	}()

	return commands
}

func (that *Console) RenderCell(cell int, mark entity.Mark, state usecase.CellState) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cells[cell] = cellView{mark: mark, state: state}
	that.draw()
}

func (that *Console) RenderStatus(text string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.status = text
	that.draw()
}

func (that *Console) RenderTurn(player entity.Mark) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.turn = player
	that.status = ""
	that.draw()
}

// NotifyGameOver - waits for the next input line, or for the input to end.
func (that *Console) NotifyGameOver(text string) {
	ack := make(chan struct{})

	that.mu.Lock()
	that.ack = ack
	select {
	case that.noticed <- struct{}{}:
	default:
	}
	fmt.Fprintf(that.out, gameOverPrompt+"\n", text)
	that.mu.Unlock()

	select {
	case <-ack:
	case <-that.eof:
	}
}

// HighlightOccupied - the cell turns back to its owner's look after revertAfter, unless
// something else has been drawn there since.
func (that *Console) HighlightOccupied(cell int, owner entity.Mark) {
	that.mu.Lock()
	that.cells[cell] = cellView{mark: owner, state: usecase.CellOccupied}
	that.draw()
	that.mu.Unlock()

	time.AfterFunc(that.revertAfter, func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		if that.cells[cell] != (cellView{mark: owner, state: usecase.CellOccupied}) {
			return
		}

		that.cells[cell].state = usecase.CellPlayed
		that.draw()
	})
}

func (that *Console) acknowledge() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.ack == nil {
		return false
	}

	close(that.ack)
	that.ack = nil

	select {
	case <-that.noticed:
	default:
	}

	return true
}

// draw - callers hold mu.
func (that *Console) draw() {
	var b strings.Builder

	for row := range 3 {
		if row > 0 {
			b.WriteString("---+---+---\n")
		}

		labels := make([]string, 3)
		for col := range 3 {
			cell := row*3 + col
			labels[col] = label(cell, that.cells[cell])
		}
		b.WriteString(strings.Join(labels, "|"))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, turnLine+"\n", that.turn)
	if that.status != "" {
		b.WriteString(that.status)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if _, err := io.WriteString(that.out, b.String()); err != nil {
		that.logger.Error("failed to draw", "error", err)
	}
}

func label(cell int, view cellView) string {
	switch {
	case view.mark == entity.EmptyCell:
		return " " + strconv.Itoa(cell+1) + " "
	case view.state == usecase.CellWinning:
		return "*" + view.mark.String() + "*"
	case view.state == usecase.CellOccupied:
		return "!" + view.mark.String() + "!"
	default:
		return " " + view.mark.String() + " "
	}
}

func parseLine(line string) (usecase.Command, bool) {
	text := strings.ToLower(strings.TrimSpace(line))

	switch text {
	case "n", "nowa", "reset":
		return usecase.Command{Kind: usecase.CommandReset}, true
	case "q", "quit", "koniec":
		return usecase.Command{Kind: usecase.CommandQuit}, true
	}

	cell, err := strconv.Atoi(text)
	if err != nil || cell < 1 || cell > entity.BoardSize {
		return usecase.Command{}, false
	}

	return usecase.Move(cell - 1), true
}
