package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openai/openai-go/v3/option"

	"github.com/rocketscienceinc/tictactoe-voice/internal/config"
	"github.com/rocketscienceinc/tictactoe-voice/internal/listener"
	"github.com/rocketscienceinc/tictactoe-voice/internal/presenter/pubsub"
	"github.com/rocketscienceinc/tictactoe-voice/internal/presenter/terminal"
	"github.com/rocketscienceinc/tictactoe-voice/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-voice/internal/voice"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type ui interface {
	usecase.Presenter
	Commands(ctx context.Context) <-chan usecase.Command
}

// RunApp - runs one game session until the UI quits or a signal arrives.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	view, closeView, err := newUI(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeView()

	commands, err := subscribe(ctx, view)
	if err != nil {
		return err
	}

	var worker *listener.Worker
	if conf.Voice.Enabled {
		// the worker closes stt once its loop has exited
		stt, sttErr := newTranscriber(conf)
		if sttErr != nil {
			return sttErr
		}

		mic := voice.NewMicrophone(logger, conf.Voice.SampleRate, conf.Voice.Pause)
		worker = listener.New(logger, mic, stt, listener.Config{
			Language:          conf.Voice.Language,
			Calibration:       conf.Voice.Calibration,
			CaptureTimeout:    conf.Voice.CaptureTimeout,
			PhraseLimit:       conf.Voice.PhraseLimit,
			TranscribeTimeout: conf.Voice.TranscribeTimeout,
			EventBuffer:       conf.Voice.EventBuffer,
		})
	}

	session := usecase.NewGameSession(logger, view, voiceOrNil(worker), usecase.SessionConfig{
		NewGameOnFinish: conf.Presenter.NewGameOnFinish,
		ShutdownTimeout: conf.Voice.ShutdownTimeout,
	})

	log.Info("Starting game session", "presenter", conf.Presenter.Kind, "voice", conf.Voice.Enabled)

	if err = session.Run(ctx, commands); err != nil {
		return fmt.Errorf("game session failed: %w", err)
	}

	log.Info("Game session finished")

	return nil
}

// voiceOrNil - keeps a nil *Worker from turning into a non-nil interface.
func voiceOrNil(worker *listener.Worker) usecase.VoiceListener {
	if worker == nil {
		return nil
	}

	return worker
}

// subscribe - starts reading UI input and, for a UI in another process, waits until
// the subscription is live so nothing sent at startup is lost.
func subscribe(ctx context.Context, view ui) (<-chan usecase.Command, error) {
	commands := view.Commands(ctx)

	if waiter, ok := view.(interface{ Ready(ctx context.Context) error }); ok {
		if err := waiter.Ready(ctx); err != nil {
			return nil, fmt.Errorf("ui commands subscription: %w", err)
		}
	}

	return commands, nil
}

func newUI(ctx context.Context, logger *slog.Logger, conf *config.Config) (ui, func(), error) {
	log := logger.With("component", "app")

	if conf.Presenter.Kind == config.PresenterTerminal {
		return terminal.New(logger, os.Stdin, os.Stdout, conf.Presenter.HighlightRevert), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	client, err := pubsub.Connect(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	publisher := pubsub.New(ctx, logger, client, pubsub.Config{
		Channel:     conf.Redis.Channel,
		Commands:    conf.Redis.Commands,
		AckKey:      conf.Redis.AckKey,
		AckTimeout:  conf.Redis.AckTimeout,
		RevertAfter: conf.Presenter.HighlightRevert,
	})

	return publisher, func() {
		if err = client.Close(); err != nil {
			log.Error("could not close redis client", "error", err)
		}
	}, nil
}

func newTranscriber(conf *config.Config) (listener.Transcriber, error) {
	switch conf.Voice.Engine {
	case config.EngineOpenAI:
		return voice.NewOpenAITranscriber(conf.OpenAI.Model, option.WithAPIKey(conf.OpenAI.APIKey)), nil
	case config.EngineWhisper:
		stt, err := voice.NewWhisperTranscriber(conf.Voice.WhisperModel)
		if err != nil {
			return nil, fmt.Errorf("could not load whisper model: %w", err)
		}
		return stt, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownEngine, conf.Voice.Engine)
	}
}
