// Package voice captures utterances from the default microphone and turns them into text.
package voice

import (
	"errors"
	"strings"
	"time"
)

const DefaultSampleRate = 16000

var (
	// ErrWaitTimeout - nobody started speaking before the capture timeout.
	ErrWaitTimeout = errors.New("listening timed out while waiting for phrase to start")
	// ErrNoConfidentResult - the audio was captured but nothing could be recognized in it.
	ErrNoConfidentResult = errors.New("speech not understood")
	// ErrFrameDropped - one frame was lost, e.g. to an input overflow. Reading can go on.
	ErrFrameDropped = errors.New("audio frame dropped")
)

// Audio - one captured phrase, mono float32 PCM in [-1, 1].
type Audio struct {
	Samples    []float32
	SampleRate int
}

func (that Audio) Duration() time.Duration {
	if that.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(that.Samples)) * time.Second / time.Duration(that.SampleRate)
}

// BaseLanguage - "pl-PL" -> "pl", engines want the bare ISO-639-1 code.
func BaseLanguage(tag string) string {
	base, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
	return strings.ToLower(base)
}
