package speech

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

const stageRecognize = "recognize"

// Result is the text recognized from one audio file.
type Result struct {
	Text       string
	Confidence float64
	Provider   string
	Language   string
}

// Recognizer converts an audio file into text.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string) (Result, error)
	Name() string
}

// New builds the recognizer selected by cfg.Speech.Provider, wrapped with
// the configured retry policy.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Recognizer, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageRecognize, "build recognizer", "configuration required", nil)
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageRecognize, "build recognizer", "credentials", err)
	}
	timeout := time.Duration(cfg.Speech.TimeoutSeconds) * time.Second

	var (
		rec Recognizer
		err error
	)
	switch strings.ToLower(cfg.Speech.Provider) {
	case config.ProviderGoogle:
		rec, err = NewGoogle(ctx, GoogleConfig{
			APIKey:     cfg.Google.APIKey,
			BaseURL:    cfg.Google.BaseURL,
			Model:      cfg.Google.Model,
			Language:   cfg.Speech.Language,
			SampleRate: cfg.Audio.SampleRate,
			Channels:   cfg.Audio.Channels,
			Timeout:    timeout,
		})
	case config.ProviderOpenAI:
		rec, err = NewOpenAI(OpenAIConfig{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.OpenAI.Model,
			Language: cfg.Speech.Language,
			Timeout:  timeout,
		})
	case config.ProviderWhisperX:
		rec = NewWhisperX(WhisperXConfig{
			Model:       cfg.WhisperX.Model,
			CUDAEnabled: cfg.WhisperX.CUDAEnabled,
			VADMethod:   cfg.WhisperX.VADMethod,
			HFToken:     cfg.WhisperX.HFToken,
			Language:    cfg.Speech.Language,
			Timeout:     timeout,
		})
	default:
		return nil, services.Wrap(services.ErrConfiguration, stageRecognize, "build recognizer", fmt.Sprintf("unknown provider %q", cfg.Speech.Provider), nil)
	}
	if err != nil {
		return nil, err
	}

	return WithRetry(rec, cfg.Speech.RetryAttempts, defaultRetryBaseDelay, defaultRetryMaxDelay,
		WithRetryLogger(logging.NewComponentLogger(logger, "speech"))), nil
}

// joinTexts trims each part and joins the non-empty ones with a single space.
func joinTexts(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}

func noSpeech(provider, audioPath string) error {
	return services.Wrap(services.ErrNoSpeech, stageRecognize, provider, "no speech recognized in "+audioPath, nil)
}
