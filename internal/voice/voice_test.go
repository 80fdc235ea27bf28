package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDeviceGone = errors.New("device unplugged")

// fakeFrames - serves frames with the given amplitudes, then the error (or silence).
func fakeFrames(size int, amplitudes []float32, tail error) frameReader {
	next := 0
	return func() ([]float32, error) {
		if next >= len(amplitudes) {
			if tail != nil {
				return nil, tail
			}
			return make([]float32, size), nil
		}

		frame := make([]float32, size)
		for i := range frame {
			frame[i] = amplitudes[next]
		}
		next++

		return frame, nil
	}
}

func newTestRecorder() *phraseRecorder {
	detector := NewEnergyDetector()
	detector.Threshold = 0.1

	return &phraseRecorder{
		detector: detector,
		frame:    100 * time.Millisecond,
		pause:    200 * time.Millisecond,
		preRoll:  1,
	}
}

func TestBaseLanguage(t *testing.T) {
	assert.Equal(t, "pl", BaseLanguage("pl-PL"))
	assert.Equal(t, "en", BaseLanguage(" EN "))
	assert.Equal(t, "", BaseLanguage(""))
}

func TestAudio_Duration(t *testing.T) {
	assert.Equal(t, time.Second, Audio{Samples: make([]float32, 16000), SampleRate: 16000}.Duration())
	assert.Equal(t, time.Duration(0), Audio{Samples: make([]float32, 10)}.Duration())
}

func TestEnergyDetector(t *testing.T) {
	t.Run("Calibrate sets the threshold above the ambient level", func(t *testing.T) {
		detector := NewEnergyDetector()

		detector.Calibrate([]float64{0.1, 0.2, 0.3})

		assert.InDelta(t, 0.3, detector.Threshold, 1e-9)
		assert.False(t, detector.IsSpeech(0.25))
		assert.True(t, detector.IsSpeech(0.35))
	})

	t.Run("Calibrate never goes under the floor", func(t *testing.T) {
		detector := NewEnergyDetector()

		detector.Calibrate([]float64{0, 0})

		assert.Equal(t, detector.MinThreshold, detector.Threshold)
	})

	t.Run("Observe drifts towards the ambient level", func(t *testing.T) {
		detector := NewEnergyDetector()
		detector.Threshold = 1

		detector.Observe(0.1, time.Second)

		assert.Less(t, detector.Threshold, 1.0)
		assert.Greater(t, detector.Threshold, 0.15)
	})
}

func TestPhraseRecorder_Record(t *testing.T) {
	t.Run("Returns ErrWaitTimeout when nobody speaks", func(t *testing.T) {
		// Given: a stream of silence
		recorder := newTestRecorder()
		read := fakeFrames(4, nil, nil)

		// When: recording with a one second timeout
		_, err := recorder.record(read, time.Second, 3*time.Second)

		// Then: the wait times out
		require.ErrorIs(t, err, ErrWaitTimeout)
	})

	t.Run("Records a phrase until the pause", func(t *testing.T) {
		// Given: silence, speech for three frames, then silence
		recorder := newTestRecorder()
		read := fakeFrames(4, []float32{0, 0, 0.5, 0.5, 0.5, 0, 0, 0.5}, nil)

		// When: recording
		samples, err := recorder.record(read, time.Second, 3*time.Second)

		// Then: one pre-roll frame, three speech frames and two pause frames are kept
		require.NoError(t, err)
		assert.Len(t, samples, 6*4)
		assert.Equal(t, float32(0), samples[0])
		assert.Equal(t, float32(0.5), samples[4])
	})

	t.Run("Stops at the phrase limit", func(t *testing.T) {
		// Given: someone who never stops talking
		recorder := newTestRecorder()
		loud := make([]float32, 100)
		for i := range loud {
			loud[i] = 0.9
		}
		read := fakeFrames(2, loud, nil)

		// When: recording with a 500ms phrase limit
		samples, err := recorder.record(read, time.Second, 500*time.Millisecond)

		// Then: five frames are recorded
		require.NoError(t, err)
		assert.Len(t, samples, 5*2)
	})

	t.Run("Dropped frames are skipped", func(t *testing.T) {
		// Given: a stream that overflowed after sitting unread, then carries speech
		recorder := newTestRecorder()
		frames := fakeFrames(4, []float32{0.5, 0.5, 0, 0}, nil)
		dropped := 2
		read := func() ([]float32, error) {
			if dropped > 0 {
				dropped--
				return nil, fmt.Errorf("%w: input overflowed", ErrFrameDropped)
			}
			return frames()
		}

		// When: recording
		samples, err := recorder.record(read, time.Second, 3*time.Second)

		// Then: the phrase is recorded without the lost frames
		require.NoError(t, err)
		assert.Len(t, samples, 4*4)
		assert.Equal(t, float32(0.5), samples[0])
	})

	t.Run("Dropped frames count towards the timeout", func(t *testing.T) {
		// Given: a stream that only ever drops frames
		recorder := newTestRecorder()
		read := func() ([]float32, error) { return nil, ErrFrameDropped }

		// When: recording
		_, err := recorder.record(read, time.Second, 3*time.Second)

		// Then: the wait times out instead of spinning forever
		require.ErrorIs(t, err, ErrWaitTimeout)
	})

	t.Run("Device errors are returned", func(t *testing.T) {
		// Given: a device that fails on the first read
		recorder := newTestRecorder()
		read := fakeFrames(4, nil, errDeviceGone)

		// When: recording
		_, err := recorder.record(read, time.Second, time.Second)

		// Then: the device error comes back and is not a timeout
		require.ErrorIs(t, err, errDeviceGone)
		assert.NotErrorIs(t, err, ErrWaitTimeout)
	})
}

func TestJoinSegments(t *testing.T) {
	assert.Equal(t, "górny lewy", joinSegments([]string{" górny", "[BLANK_AUDIO]", "lewy ", "lewy"}))
	assert.Equal(t, "", joinSegments([]string{"(muzyka)", " "}))
}

func TestEncodeWAV(t *testing.T) {
	// Given: a short tone
	audio := Audio{Samples: []float32{0, 0.5, -0.5, 1, -1, 2}, SampleRate: DefaultSampleRate}

	// When: it is encoded
	data, err := EncodeWAV(audio)
	require.NoError(t, err)

	// Then: it is a valid 16-bit mono WAV with the same samples
	decoder := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, decoder.IsValidFile())

	buf, err := decoder.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, DefaultSampleRate, buf.Format.SampleRate)
	assert.Equal(t, []int{0, 16383, -16383, 32767, -32767, 32767}, buf.Data)
}

func TestOpenAITranscriber_Transcribe(t *testing.T) {
	newServer := func(t *testing.T, text string) *httptest.Server {
		t.Helper()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasSuffix(r.URL.Path, "/audio/transcriptions"))
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "pl", r.FormValue("language"))
			assert.Equal(t, "whisper-1", r.FormValue("model"))

			if file, _, err := r.FormFile("file"); assert.NoError(t, err) {
				header, _ := io.ReadAll(io.LimitReader(file, 4))
				assert.Equal(t, "RIFF", string(header))
				_ = file.Close()
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
		}))
		t.Cleanup(srv.Close)

		return srv
	}

	audio := Audio{Samples: make([]float32, 1600), SampleRate: DefaultSampleRate}

	t.Run("Returns the recognized text", func(t *testing.T) {
		srv := newServer(t, " Górny lewy ")
		transcriber := NewOpenAITranscriber("", option.WithBaseURL(srv.URL+"/"), option.WithAPIKey("test"), option.WithMaxRetries(0))

		text, err := transcriber.Transcribe(context.Background(), audio, "pl-PL")

		require.NoError(t, err)
		assert.Equal(t, "Górny lewy", text)
	})

	t.Run("Empty text is not a confident result", func(t *testing.T) {
		srv := newServer(t, "")
		transcriber := NewOpenAITranscriber("whisper-1", option.WithBaseURL(srv.URL+"/"), option.WithAPIKey("test"), option.WithMaxRetries(0))

		_, err := transcriber.Transcribe(context.Background(), audio, "pl-PL")

		require.ErrorIs(t, err, ErrNoConfidentResult)
	})

	t.Run("No samples are never sent", func(t *testing.T) {
		transcriber := NewOpenAITranscriber("", option.WithBaseURL("http://127.0.0.1:0/"), option.WithAPIKey("test"))

		_, err := transcriber.Transcribe(context.Background(), Audio{SampleRate: DefaultSampleRate}, "pl-PL")

		require.ErrorIs(t, err, ErrNoConfidentResult)
	})
}
