package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-voice/internal/entity"
	"github.com/rocketscienceinc/tictactoe-voice/internal/usecase"
)

const (
	TypeCell      = "cell"
	TypeStatus    = "status"
	TypeTurn      = "turn"
	TypeGameOver  = "game-over"
	TypeHighlight = "highlight"
	TypeRevert    = "revert"

	TypeMove  = "move"
	TypeReset = "reset"
	TypeQuit  = "quit"
)

var ErrUnknownCommand = errors.New("unknown command")

// Message - one view update published for the UI, or one command received from it.
type Message struct {
	Type  string `json:"type"`
	Cell  *int   `json:"cell,omitempty"`
	Mark  string `json:"mark,omitempty"`
	State string `json:"state,omitempty"`
	Text  string `json:"text,omitempty"`
}

type Config struct {
	Channel     string
	Commands    string
	AckKey      string
	AckTimeout  time.Duration
	RevertAfter time.Duration
}

// Publisher - a presenter for a UI living in another process. View updates go out on
// Channel, UI input comes in on Commands, and game-over waits for an item on AckKey.
type Publisher struct {
	logger *slog.Logger
	client *redis.Client
	conf   Config

	ctx context.Context
}

// Connect - opens a client and checks the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return conn, nil
}

// New - ctx bounds every call made on behalf of the session.
func New(ctx context.Context, logger *slog.Logger, client *redis.Client, conf Config) *Publisher {
	return &Publisher{
		logger: logger.With("component", "redis-presenter"),
		client: client,
		conf:   conf,
		ctx:    ctx,
	}
}

func (that *Publisher) RenderCell(cell int, mark entity.Mark, state usecase.CellState) {
	that.publish(Message{Type: TypeCell, Cell: &cell, Mark: mark.String(), State: state.String()})
}

func (that *Publisher) RenderStatus(text string) {
	that.publish(Message{Type: TypeStatus, Text: text})
}

func (that *Publisher) RenderTurn(player entity.Mark) {
	that.publish(Message{Type: TypeTurn, Mark: player.String()})
}

// NotifyGameOver - blocks until the UI pushes to the ack list, AckTimeout passes or ctx is done.
func (that *Publisher) NotifyGameOver(text string) {
	log := that.logger.With("method", "NotifyGameOver")

	that.publish(Message{Type: TypeGameOver, Text: text})

	err := that.client.BLPop(that.ctx, that.conf.AckTimeout, that.conf.AckKey).Err()
	switch {
	case errors.Is(err, redis.Nil):
		log.Warn("game over was not acknowledged in time", "timeout", that.conf.AckTimeout)
	case err != nil:
		log.Error("failed to wait for acknowledgement", "error", err)
	}
}

// HighlightOccupied - the revert is published after RevertAfter regardless of what happened meanwhile.
func (that *Publisher) HighlightOccupied(cell int, owner entity.Mark) {
	that.publish(Message{Type: TypeHighlight, Cell: &cell, Mark: owner.String(), State: usecase.CellOccupied.String()})

	time.AfterFunc(that.conf.RevertAfter, func() {
		that.publish(Message{Type: TypeRevert, Cell: &cell, Mark: owner.String(), State: usecase.CellPlayed.String()})
	})
}

// Commands - UI input received on the commands channel, closed when ctx is done.
func (that *Publisher) Commands(ctx context.Context) <-chan usecase.Command {
	log := that.logger.With("method", "Commands")

	commands := make(chan usecase.Command)
	pubsub := that.client.Subscribe(ctx, that.conf.Commands)

	go func() {
		defer close(commands)
		defer func() {
			if err := pubsub.Close(); err != nil {
				log.Error("failed to close subscription", "error", err)
			}
		}()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				cmd, err := decodeCommand(msg.Payload)
				if err != nil {
					log.Warn("dropping command", "payload", msg.Payload, "error", err)
					continue
				}

				select {
				case commands <- cmd:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return commands
}

// Ready - waits until the commands subscription is active, so nothing published after it is missed.
func (that *Publisher) Ready(ctx context.Context) error {
	for {
		counts, err := that.client.PubSubNumSub(ctx, that.conf.Commands).Result()
		if err != nil {
			return fmt.Errorf("failed to check subscription: %w", err)
		}

		if counts[that.conf.Commands] > 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (that *Publisher) publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		that.logger.Error("could not marshal message", "error", err)
		return
	}

	if err = that.client.Publish(that.ctx, that.conf.Channel, data).Err(); err != nil {
		that.logger.Error("failed to publish message", "type", msg.Type, "error", err)
	}
}

func decodeCommand(payload string) (usecase.Command, error) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return usecase.Command{}, fmt.Errorf("could not unmarshal command: %w", err)
	}

	switch msg.Type {
	case TypeMove:
		if msg.Cell == nil {
			return usecase.Command{}, fmt.Errorf("%w: move without a cell", ErrUnknownCommand)
		}
		return usecase.Move(*msg.Cell), nil
	case TypeReset:
		return usecase.Command{Kind: usecase.CommandReset}, nil
	case TypeQuit:
		return usecase.Command{Kind: usecase.CommandQuit}, nil
	default:
		return usecase.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Type)
	}
}
