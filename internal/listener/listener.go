package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/tictactoe-voice/internal/voice"
)

const (
	StatusCalibrating   = "Kalibracja mikrofonu..."
	StatusReady         = "Powiedz cyfrę"
	StatusNotUnderstood = "Nie zrozumiałem. Spróbuj jeszcze raz."
	statusDeviceError   = "Błąd mikrofonu: %v"
)

type Microphone interface {
	Open() error
	Close() error
	Calibrate(duration time.Duration) error
	// Capture returns voice.ErrWaitTimeout when no speech starts within timeout.
	Capture(timeout, phraseLimit time.Duration) (voice.Audio, error)
}

// Transcriber - when it is also an io.Closer, the worker closes it once the loop has exited.
type Transcriber interface {
	// Transcribe returns voice.ErrNoConfidentResult when nothing was recognized.
	Transcribe(ctx context.Context, audio voice.Audio, language string) (string, error)
}

type Config struct {
	Language          string
	Calibration       time.Duration
	CaptureTimeout    time.Duration
	PhraseLimit       time.Duration
	TranscribeTimeout time.Duration
	EventBuffer       int
}

type State int32

const (
	Created State = iota
	Running
	StopRequested
	Stopped
)

func (that State) String() string {
	switch that {
	case Created:
		return "created"
	case Running:
		return "running"
	case StopRequested:
		return "stop-requested"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(that))
	}
}

// Worker - the background capture loop. It never touches game state: everything it
// learns goes out through Events, in the order it happened.
type Worker struct {
	logger *slog.Logger

	mic         Microphone
	transcriber Transcriber
	conf        Config

	events chan Event
	stop   chan struct{}
	done   chan struct{}
	state  atomic.Int32

	startOnce sync.Once
	stopOnce  sync.Once
}

func New(logger *slog.Logger, mic Microphone, transcriber Transcriber, conf Config) *Worker {
	if conf.EventBuffer <= 0 {
		conf.EventBuffer = 1
	}

	return &Worker{
		logger:      logger.With("component", "listener"),
		mic:         mic,
		transcriber: transcriber,
		conf:        conf,
		events:      make(chan Event, conf.EventBuffer),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Events - closed once the worker has stopped.
func (that *Worker) Events() <-chan Event {
	return that.events
}

func (that *Worker) State() State {
	return State(that.state.Load())
}

// Start - launches the loop; calling it again, or after Stop, does nothing.
func (that *Worker) Start() {
	that.startOnce.Do(func() {
		if that.state.CompareAndSwap(int32(Created), int32(Running)) {
			go that.run()
		}
	})
}

// Stop - asks the loop to exit and waits up to timeout for it. A capture in progress is
// not interrupted. Returns false when the worker did not stop in time.
func (that *Worker) Stop(timeout time.Duration) bool {
	that.stopOnce.Do(func() {
		that.state.CompareAndSwap(int32(Running), int32(StopRequested))
		close(that.stop)
	})

	// never started, nothing to wait for
	if that.state.CompareAndSwap(int32(Created), int32(Stopped)) {
		that.closeTranscriber()
		close(that.events)
		close(that.done)
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-that.done:
		return true
	case <-timer.C:
		return false
	}
}

// Done - closed when the loop has exited.
func (that *Worker) Done() <-chan struct{} {
	return that.done
}

func (that *Worker) run() {
	log := that.logger.With("method", "run")

	defer func() {
		that.closeTranscriber()
		that.state.Store(int32(Stopped))
		close(that.events)
		close(that.done)
		log.Info("listener stopped")
	}()

	if err := that.mic.Open(); err != nil {
		that.fail(err)
		return
	}

	defer func() {
		if err := that.mic.Close(); err != nil {
			log.Error("failed to close microphone", "error", err)
		}
	}()

	that.emit(Status(StatusCalibrating))

	if err := that.mic.Calibrate(that.conf.Calibration); err != nil {
		that.fail(err)
		return
	}

	that.emit(Status(StatusReady))
	log.Info("listener ready", "language", that.conf.Language)

	for !that.stopRequested() {
		audio, err := that.mic.Capture(that.conf.CaptureTimeout, that.conf.PhraseLimit)
		if errors.Is(err, voice.ErrWaitTimeout) {
			continue
		}

		if errors.Is(err, voice.ErrFrameDropped) {
			log.Warn("capture lost audio", "error", err)
			that.emit(Status(StatusNotUnderstood))
			continue
		}

		if err != nil {
			that.fail(err)
			return
		}

		text, err := that.transcribe(audio)
		if err != nil {
			if !errors.Is(err, voice.ErrNoConfidentResult) {
				log.Warn("transcription failed", "error", err)
			}

			that.emit(Status(StatusNotUnderstood))
			continue
		}

		log.Debug("utterance recognized", "text", text)
		that.emit(Utterance(text))
	}
}

func (that *Worker) transcribe(audio voice.Audio) (string, error) {
	ctx := context.Background()
	if that.conf.TranscribeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, that.conf.TranscribeTimeout)
		defer cancel()
	}

	text, err := that.transcriber.Transcribe(ctx, audio, that.conf.Language)
	if err != nil {
		return "", err
	}

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", voice.ErrNoConfidentResult
	}

	return text, nil
}

func (that *Worker) closeTranscriber() {
	closer, ok := that.transcriber.(io.Closer)
	if !ok {
		return
	}

	if err := closer.Close(); err != nil {
		that.logger.Error("failed to close transcriber", "error", err)
	}
}

// fail - device errors end this worker; the game itself keeps going.
func (that *Worker) fail(err error) {
	that.logger.Error("microphone failure, voice input disabled", "error", err)
	that.emit(Status(fmt.Sprintf(statusDeviceError, err)))
}

// emit - blocks while the buffer is full, unless a stop was requested.
func (that *Worker) emit(event Event) {
	select {
	case that.events <- event:
	case <-that.stop:
	}
}

func (that *Worker) stopRequested() bool {
	select {
	case <-that.stop:
		return true
	default:
		return false
	}
}
