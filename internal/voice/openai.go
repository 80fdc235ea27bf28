package voice

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/afero"
)

const (
	wavBitDepth    = 16
	wavPCMFormat   = 1
	uploadFileName = "utterance.wav"
)

// OpenAITranscriber - remote transcription through the OpenAI audio API.
type OpenAITranscriber struct {
	client openai.Client
	model  string
}

func NewOpenAITranscriber(model string, opts ...option.RequestOption) *OpenAITranscriber {
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}

	return &OpenAITranscriber{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Close - nothing to release, the client holds no connection of its own.
func (that *OpenAITranscriber) Close() error {
	return nil
}

func (that *OpenAITranscriber) Transcribe(ctx context.Context, audio Audio, language string) (string, error) {
	if len(audio.Samples) == 0 {
		return "", ErrNoConfidentResult
	}

	data, err := EncodeWAV(audio)
	if err != nil {
		return "", fmt.Errorf("failed to encode audio: %w", err)
	}

	resp, err := that.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(data), uploadFileName, "audio/wav"),
		Model:    openai.AudioModel(that.model),
		Language: openai.String(BaseLanguage(language)),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoConfidentResult
	}

	return text, nil
}

// EncodeWAV - 16-bit mono PCM WAV. The encoder needs to seek back to patch the header,
// so it writes into an in-memory file first.
func EncodeWAV(audio Audio) ([]byte, error) {
	fs := afero.NewMemMapFs()

	file, err := fs.Create(uploadFileName)
	if err != nil {
		return nil, fmt.Errorf("create buffer file: %w", err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, audio.SampleRate, wavBitDepth, 1, wavPCMFormat)

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: audio.SampleRate},
		Data:           toPCM16(audio.Samples),
		SourceBitDepth: wavBitDepth,
	}

	if err = encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("write samples: %w", err)
	}

	if err = encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	data, err := afero.ReadFile(fs, uploadFileName)
	if err != nil {
		return nil, fmt.Errorf("read buffer file: %w", err)
	}

	return data, nil
}

func toPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		clamped := math.Max(-1, math.Min(1, float64(s)))
		out[i] = int(clamped * math.MaxInt16)
	}
	return out
}
