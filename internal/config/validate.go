package config

import (
	"errors"
	"fmt"
	"strings"

	langpkg "vidscribe/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return errors.New("audio.channels must be 1 or 2")
	}
	if c.Audio.ChunkSeconds <= 0 {
		return errors.New("audio.chunk_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSpeech() error {
	if _, err := langpkg.Normalize(c.Speech.Language); err != nil {
		return fmt.Errorf("speech.language %q is not a valid BCP 47 tag: %w", c.Speech.Language, err)
	}
	if c.Speech.TimeoutSeconds <= 0 {
		return errors.New("speech.timeout_seconds must be positive")
	}
	switch c.Speech.Provider {
	case ProviderGoogle, ProviderOpenAI:
	case ProviderWhisperX:
		if c.WhisperX.VADMethod != "silero" && c.WhisperX.VADMethod != "pyannote" {
			return fmt.Errorf("whisperx.vad_method must be silero or pyannote, got %q", c.WhisperX.VADMethod)
		}
	default:
		return fmt.Errorf("speech.provider %q is not supported (use %s, %s, or %s)",
			c.Speech.Provider, ProviderGoogle, ProviderOpenAI, ProviderWhisperX)
	}
	return nil
}

// ValidateCredentials reports whether the selected provider has what it needs
// to authenticate. It is separate from Validate so commands that never reach
// the speech service (history, compare, check) still load.
func (c *Config) ValidateCredentials() error {
	switch c.Speech.Provider {
	case ProviderGoogle:
		if strings.TrimSpace(c.Google.APIKey) == "" {
			return credentialError("google.api_key", "GOOGLE_API_KEY")
		}
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			return credentialError("openai.api_key", "OPENAI_API_KEY")
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Mode {
	case OutputModeOverwrite, OutputModeAppend:
	default:
		return fmt.Errorf("output.mode must be %s or %s, got %q", OutputModeOverwrite, OutputModeAppend, c.Output.Mode)
	}
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return errors.New("output.suffix must not contain path separators")
	}
	return nil
}

func credentialError(key, env string) error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/vidscribe/config.toml"
	}
	return fmt.Errorf("%s is required. Set %s env var or edit %s (create with 'vidscribe config init')", key, env, defaultPath)
}
