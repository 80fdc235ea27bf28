package voice

import (
	"errors"
	"fmt"
	"time"
)

// frameReader - returns the next frame of samples. The slice may be reused by the next call.
// ErrFrameDropped skips a frame; its time still counts.
type frameReader func() ([]float32, error)

// phraseRecorder - cuts one phrase out of a frame stream: waits for speech to start,
// then records until a pause or the phrase limit.
type phraseRecorder struct {
	detector *EnergyDetector
	frame    time.Duration
	pause    time.Duration
	// preRoll frames kept before speech starts so the first syllable is not clipped.
	preRoll int
}

func (that *phraseRecorder) record(read frameReader, timeout, phraseLimit time.Duration) ([]float32, error) {
	var (
		waited  time.Duration
		history [][]float32
	)

	for {
		if timeout > 0 && waited >= timeout {
			return nil, ErrWaitTimeout
		}

		frame, err := read()
		waited += that.frame
		if errors.Is(err, ErrFrameDropped) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}

		rms := frameRMS(frame)
		if that.detector.IsSpeech(rms) {
			history = append(history, append([]float32(nil), frame...))
			break
		}

		that.detector.Observe(rms, that.frame)

		history = append(history, append([]float32(nil), frame...))
		if len(history) > that.preRoll {
			history = history[1:]
		}
	}

	var out []float32
	for _, frame := range history {
		out = append(out, frame...)
	}

	var (
		recorded = that.frame
		silence  time.Duration
	)

	for phraseLimit <= 0 || recorded < phraseLimit {
		frame, err := read()
		recorded += that.frame
		if errors.Is(err, ErrFrameDropped) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		out = append(out, frame...)

		if that.detector.IsSpeech(frameRMS(frame)) {
			silence = 0
			continue
		}

		silence += that.frame
		if silence >= that.pause {
			break
		}
	}

	return out, nil
}
