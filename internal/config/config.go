package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EngineWhisper = "whisper"
	EngineOpenAI  = "openai"

	PresenterTerminal = "terminal"
	PresenterRedis    = "redis"

	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	ErrUnknownEngine    = errors.New("unknown voice engine")
	ErrUnknownPresenter = errors.New("unknown presenter")
	ErrMissingModel     = errors.New("whisper model path is empty")
	ErrMissingAPIKey    = errors.New("openai api key is empty")
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string    `yaml:"log-format" env:"LOG_FORMAT" env-default:"json"`
	Voice     Voice     `yaml:"voice"`
	OpenAI    OpenAI    `yaml:"openai"`
	Presenter Presenter `yaml:"presenter"`
	Redis     Redis     `yaml:"redis"`
}

type Voice struct {
	Enabled           bool          `yaml:"enabled" env:"VOICE_ENABLED" env-default:"true"`
	Language          string        `yaml:"language" env:"VOICE_LANGUAGE" env-default:"pl-PL"`
	Engine            string        `yaml:"engine" env:"VOICE_ENGINE" env-default:"whisper"`
	WhisperModel      string        `yaml:"whisper-model" env:"WHISPER_MODEL" env-default:"models/ggml-base.bin"`
	SampleRate        int           `yaml:"sample-rate" env:"VOICE_SAMPLE_RATE" env-default:"16000"`
	Calibration       time.Duration `yaml:"calibration" env:"VOICE_CALIBRATION" env-default:"600ms"`
	CaptureTimeout    time.Duration `yaml:"capture-timeout" env:"VOICE_CAPTURE_TIMEOUT" env-default:"1s"`
	PhraseLimit       time.Duration `yaml:"phrase-limit" env:"VOICE_PHRASE_LIMIT" env-default:"3s"`
	Pause             time.Duration `yaml:"pause" env:"VOICE_PAUSE" env-default:"800ms"`
	TranscribeTimeout time.Duration `yaml:"transcribe-timeout" env:"VOICE_TRANSCRIBE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown-timeout" env:"VOICE_SHUTDOWN_TIMEOUT" env-default:"1500ms"`
	EventBuffer       int           `yaml:"event-buffer" env:"VOICE_EVENT_BUFFER" env-default:"16"`
}

type OpenAI struct {
	APIKey string `yaml:"api-key" env:"OPENAI_API_KEY"`
	Model  string `yaml:"model" env:"OPENAI_MODEL" env-default:"whisper-1"`
}

type Presenter struct {
	Kind            string        `yaml:"kind" env:"PRESENTER_KIND" env-default:"terminal"`
	HighlightRevert time.Duration `yaml:"highlight-revert" env:"PRESENTER_HIGHLIGHT_REVERT" env-default:"2s"`
	NewGameOnFinish bool          `yaml:"new-game-on-finish" env:"PRESENTER_NEW_GAME_ON_FINISH" env-default:"true"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Channel    string        `yaml:"channel" env:"REDIS_CHANNEL" env-default:"tictactoe:view"`
	Commands   string        `yaml:"commands" env:"REDIS_COMMANDS" env-default:"tictactoe:input"`
	AckKey     string        `yaml:"ack-key" env:"REDIS_ACK_KEY" env-default:"tictactoe:ack"`
	AckTimeout time.Duration `yaml:"ack-timeout" env:"REDIS_ACK_TIMEOUT" env-default:"0s"`
}

// MustLoad - load all configurations in config.yml file, or from the environment when there is no file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat config: %w", err)
	default:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate - checks the choices that would otherwise only fail once the session is running.
func (that *Config) Validate() error {
	switch that.Presenter.Kind {
	case PresenterTerminal, PresenterRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPresenter, that.Presenter.Kind)
	}

	if !that.Voice.Enabled {
		return nil
	}

	switch that.Voice.Engine {
	case EngineWhisper:
		if that.Voice.WhisperModel == "" {
			return ErrMissingModel
		}
	case EngineOpenAI:
		if that.OpenAI.APIKey == "" {
			return ErrMissingAPIKey
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, that.Voice.Engine)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
