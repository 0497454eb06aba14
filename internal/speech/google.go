package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"

	"vidscribe/internal/services"
)

// ProviderGoogle is the name reported by the Google recognizer.
const ProviderGoogle = "google"

// GoogleConfig captures the settings for Cloud Speech-to-Text v1.
type GoogleConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Language   string
	SampleRate int
	Channels   int
	Timeout    time.Duration
}

// Google recognizes audio with the Cloud Speech-to-Text v1 REST API.
type Google struct {
	cfg     GoogleConfig
	service *speechapi.Service
}

// NewGoogle constructs a Google recognizer authenticated with an API key.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageRecognize, ProviderGoogle, "api key required", nil)
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithEndpoint(base))
	}
	service, err := speechapi.NewService(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageRecognize, ProviderGoogle, "create client", err)
	}
	return &Google{cfg: cfg, service: service}, nil
}

// Name implements Recognizer.
func (g *Google) Name() string {
	return ProviderGoogle
}

// Recognize sends audioPath inline to speech:recognize.
func (g *Google) Recognize(ctx context.Context, audioPath string) (Result, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, stageRecognize, ProviderGoogle, "read audio", err)
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	req := &speechapi.RecognizeRequest{
		Config: g.recognitionConfig(),
		Audio: &speechapi.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(data),
		},
	}
	resp, err := g.service.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return Result{}, classifyStatus(ProviderGoogle, apiErr.Code, err)
		}
		return Result{}, classifyStatus(ProviderGoogle, 0, err)
	}

	parts := make([]string, 0, len(resp.Results))
	var confidenceSum float64
	var scored int
	for _, res := range resp.Results {
		if res == nil || len(res.Alternatives) == 0 || res.Alternatives[0] == nil {
			continue
		}
		best := res.Alternatives[0]
		parts = append(parts, best.Transcript)
		if best.Confidence > 0 {
			confidenceSum += best.Confidence
			scored++
		}
	}
	text := joinTexts(parts)
	if text == "" {
		return Result{}, noSpeech(ProviderGoogle, audioPath)
	}
	result := Result{Text: text, Provider: ProviderGoogle, Language: g.cfg.Language}
	if scored > 0 {
		result.Confidence = confidenceSum / float64(scored)
	}
	return result, nil
}

func (g *Google) recognitionConfig() *speechapi.RecognitionConfig {
	cfg := &speechapi.RecognitionConfig{
		Encoding:                   "LINEAR16",
		LanguageCode:               g.cfg.Language,
		EnableAutomaticPunctuation: true,
	}
	if g.cfg.SampleRate > 0 {
		cfg.SampleRateHertz = int64(g.cfg.SampleRate)
	}
	if g.cfg.Channels > 0 {
		cfg.AudioChannelCount = int64(g.cfg.Channels)
	}
	if model := strings.TrimSpace(g.cfg.Model); model != "" {
		cfg.Model = model
	}
	return cfg
}
