package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded once at startup. There is no runtime reload.
type Config struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model_name"`
	WakeWord       string `yaml:"wake_word"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	STTBackend   string `yaml:"stt_backend"` // whisper | openai | google
	WhisperModel string `yaml:"whisper_model"`
	Voice        string `yaml:"voice"`
	SlowSpeech   bool   `yaml:"slow_speech"`
	ContextSize  int    `yaml:"context_size"`

	CameraURL   string `yaml:"camera_url"`
	ProxyAddr   string `yaml:"proxy_addr"`
	RemindersDB string `yaml:"reminders_db"`
	ChimePath   string `yaml:"chime_path"`
	NotifyCmd   string `yaml:"notify_cmd"`
	SocketPath  string `yaml:"socket_path"`
	PushToTalk  bool   `yaml:"push_to_talk"`
}

func defaults() *Config {
	return &Config{
		Model:          "gpt-5-nano",
		Language:       "en",
		TimeoutSeconds: 15,
		STTBackend:     "openai",
		Voice:          "alloy",
		ContextSize:    32,
		RemindersDB:    "aura.db",
		NotifyCmd:      "notify-send",
		SocketPath:     "/tmp/aura.sock",
	}
}

// Load reads the env file, an optional YAML file and the environment,
// in that order of increasing precedence.
func Load(envFile, yamlFile string) (*Config, error) {
	godotenv.Load(envFile)

	cfg := defaults()

	if yamlFile != "" {
		data, err := os.ReadFile(yamlFile)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.overlayEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayEnv() {
	setString(&c.APIKey, "OPENAI_API_KEY")
	setString(&c.Model, "AURA_MODEL")
	setString(&c.WakeWord, "AURA_WAKE_WORD")
	setString(&c.Language, "AURA_LANGUAGE")
	setInt(&c.TimeoutSeconds, "AURA_TIMEOUT_SECONDS")
	setString(&c.STTBackend, "AURA_STT_BACKEND")
	setString(&c.WhisperModel, "AURA_WHISPER_MODEL")
	setString(&c.Voice, "AURA_VOICE")
	setString(&c.CameraURL, "AURA_CAMERA_URL")
	setString(&c.ProxyAddr, "AURA_PROXY")
	setString(&c.RemindersDB, "AURA_REMINDERS_DB")
	setString(&c.ChimePath, "AURA_CHIME")
	setString(&c.SocketPath, "AURA_SOCKET")
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY not set")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	switch c.STTBackend {
	case "whisper", "openai", "google":
	default:
		return fmt.Errorf("unknown stt_backend %q", c.STTBackend)
	}
	if c.STTBackend == "whisper" && c.WhisperModel == "" {
		return errors.New("stt_backend whisper needs whisper_model path")
	}
	return nil
}

// Timeout is the listener timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
