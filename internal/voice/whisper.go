package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperTranscriber - local transcription with a whisper.cpp model.
type WhisperTranscriber struct {
	model   whisper.Model
	threads int
}

func NewWhisperTranscriber(modelPath string) (*WhisperTranscriber, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	return &WhisperTranscriber{model: model, threads: runtime.NumCPU()}, nil
}

func (that *WhisperTranscriber) Close() error {
	if that.model == nil {
		return nil
	}
	return that.model.Close()
}

// Transcribe - audio must be mono 16 kHz.
func (that *WhisperTranscriber) Transcribe(ctx context.Context, audio Audio, language string) (string, error) {
	if audio.SampleRate != DefaultSampleRate {
		return "", fmt.Errorf("whisper needs %d Hz audio, got %d", DefaultSampleRate, audio.SampleRate)
	}

	if len(audio.Samples) == 0 {
		return "", ErrNoConfidentResult
	}

	wctx, err := that.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new context: %w", err)
	}

	if err = wctx.SetLanguage(BaseLanguage(language)); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetTranslate(false)
	wctx.SetThreads(uint(that.threads))

	if err = wctx.Process(audio.Samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("process: %w", err)
	}

	var segments []string
	for {
		if err = ctx.Err(); err != nil {
			return "", err
		}

		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}

		segments = append(segments, segment.Text)
	}

	text := joinSegments(segments)
	if text == "" {
		return "", ErrNoConfidentResult
	}

	return text, nil
}

// joinSegments - drops annotations such as "[BLANK_AUDIO]" or "(music)" and repeated segments.
func joinSegments(segments []string) string {
	seen := make(map[string]bool, len(segments))
	parts := make([]string, 0, len(segments))

	for _, segment := range segments {
		text := strings.TrimSpace(segment)
		if text == "" || seen[text] {
			continue
		}

		if text[0] == '(' || text[0] == '[' || text[len(text)-1] == ')' || text[len(text)-1] == ']' {
			continue
		}

		seen[text] = true
		parts = append(parts, text)
	}

	return strings.Join(parts, " ")
}
