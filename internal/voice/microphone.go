package voice

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	frameDuration = 20 * time.Millisecond
	preRollFrames = 15 // 300ms
)

var ErrMicrophoneClosed = errors.New("microphone is not open")

// Microphone - the default input device, read synchronously frame by frame.
type Microphone struct {
	logger *slog.Logger

	sampleRate int
	buf        []float32
	recorder   *phraseRecorder

	mu     sync.Mutex
	stream *portaudio.Stream
}

func NewMicrophone(logger *slog.Logger, sampleRate int, pause time.Duration) *Microphone {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	frameSize := int(time.Duration(sampleRate) * frameDuration / time.Second)

	return &Microphone{
		logger:     logger.With("component", "microphone"),
		sampleRate: sampleRate,
		buf:        make([]float32, frameSize),
		recorder: &phraseRecorder{
			detector: NewEnergyDetector(),
			frame:    frameDuration,
			pause:    pause,
			preRoll:  preRollFrames,
		},
	}
}

// Open - initializes portaudio and opens the default mono input stream. The stream
// only runs during Calibrate and Capture, so nothing piles up while a phrase is transcribed.
func (that *Microphone) Open() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(that.sampleRate), len(that.buf), that.buf)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("failed to open input stream: %w", err)
	}

	that.stream = stream
	that.logger.Info("microphone opened", "sample_rate", that.sampleRate, "frame", len(that.buf))

	return nil
}

func (that *Microphone) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stream == nil {
		return nil
	}

	errs := []error{that.stream.Close(), portaudio.Terminate()}
	that.stream = nil

	return errors.Join(errs...)
}

// Calibrate - listens to the room for the duration and sets the speech threshold above it.
func (that *Microphone) Calibrate(duration time.Duration) (err error) {
	if err = that.start(); err != nil {
		return fmt.Errorf("failed to calibrate: %w", err)
	}
	defer that.stop(&err)

	frames := int(duration / frameDuration)
	ambient := make([]float64, 0, frames)

	for range frames {
		frame, readErr := that.read()
		if errors.Is(readErr, ErrFrameDropped) {
			continue
		}
		if readErr != nil {
			return fmt.Errorf("failed to calibrate: %w", readErr)
		}
		ambient = append(ambient, frameRMS(frame))
	}

	that.recorder.detector.Calibrate(ambient)
	that.logger.Debug("microphone calibrated", "threshold", that.recorder.detector.Threshold)

	return nil
}

// Capture - blocks until one phrase is recorded, or returns ErrWaitTimeout when
// nobody speaks within timeout.
func (that *Microphone) Capture(timeout, phraseLimit time.Duration) (_ Audio, err error) {
	if err = that.start(); err != nil {
		return Audio{}, err
	}
	defer that.stop(&err)

	samples, err := that.recorder.record(that.read, timeout, phraseLimit)
	if err != nil {
		return Audio{}, err
	}

	return Audio{Samples: samples, SampleRate: that.sampleRate}, nil
}

func (that *Microphone) start() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stream == nil {
		return ErrMicrophoneClosed
	}

	if err := that.stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	return nil
}

// stop - a failure to stop is reported only when nothing else went wrong first.
func (that *Microphone) stop(err *error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stream == nil {
		return
	}

	if stopErr := that.stream.Stop(); stopErr != nil && *err == nil {
		*err = fmt.Errorf("failed to stop input stream: %w", stopErr)
	}
}

func (that *Microphone) read() ([]float32, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stream == nil {
		return nil, ErrMicrophoneClosed
	}

	err := that.stream.Read()
	if errors.Is(err, portaudio.InputOverflowed) {
		that.logger.Debug("input overflowed, frame dropped")
		return nil, fmt.Errorf("%w: %w", ErrFrameDropped, err)
	}
	if err != nil {
		return nil, err
	}

	return that.buf, nil
}
