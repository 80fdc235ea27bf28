package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("File values over defaults", func(t *testing.T) {
		// Given: a config file with a few keys set
		path := writeConfig(t, `
log-level: debug
voice:
  engine: openai
  pause: 500ms
openai:
  api-key: sk-test
presenter:
  kind: redis
redis:
  host: redis
  ack-timeout: 30s
`)

		// When: it is loaded
		conf, err := Load(path)

		// Then: the file wins and the rest comes from defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, FormatJSON, conf.LogFormat)
		assert.Equal(t, EngineOpenAI, conf.Voice.Engine)
		assert.Equal(t, 500*time.Millisecond, conf.Voice.Pause)
		assert.Equal(t, "pl-PL", conf.Voice.Language)
		assert.Equal(t, 1500*time.Millisecond, conf.Voice.ShutdownTimeout)
		assert.Equal(t, "whisper-1", conf.OpenAI.Model)
		assert.Equal(t, "redis:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 30*time.Second, conf.Redis.AckTimeout)
		assert.True(t, conf.Presenter.NewGameOnFinish)
	})

	t.Run("Environment only when there is no file", func(t *testing.T) {
		// Given: no config file and a couple of variables
		t.Setenv("VOICE_ENABLED", "false")
		t.Setenv("PRESENTER_HIGHLIGHT_REVERT", "1s")

		// When: it is loaded
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: variables and defaults are used
		require.NoError(t, err)
		assert.False(t, conf.Voice.Enabled)
		assert.Equal(t, time.Second, conf.Presenter.HighlightRevert)
		assert.Equal(t, PresenterTerminal, conf.Presenter.Kind)
		assert.Equal(t, 16000, conf.Voice.SampleRate)
	})

	t.Run("Unknown presenter", func(t *testing.T) {
		path := writeConfig(t, "presenter:\n  kind: gtk\n")

		_, err := Load(path)

		require.ErrorIs(t, err, ErrUnknownPresenter)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Voice:     Voice{Enabled: true, Engine: EngineWhisper, WhisperModel: "model.bin"},
			Presenter: Presenter{Kind: PresenterTerminal},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("Unknown engine", func(t *testing.T) {
		conf := valid()
		conf.Voice.Engine = "vosk"

		require.ErrorIs(t, conf.Validate(), ErrUnknownEngine)
	})

	t.Run("OpenAI without a key", func(t *testing.T) {
		conf := valid()
		conf.Voice.Engine = EngineOpenAI

		require.ErrorIs(t, conf.Validate(), ErrMissingAPIKey)
	})

	t.Run("Whisper without a model", func(t *testing.T) {
		conf := valid()
		conf.Voice.WhisperModel = ""

		require.ErrorIs(t, conf.Validate(), ErrMissingModel)
	})

	t.Run("Engine is not checked with voice off", func(t *testing.T) {
		conf := valid()
		conf.Voice.Enabled = false
		conf.Voice.Engine = ""

		require.NoError(t, conf.Validate())
	})
}
