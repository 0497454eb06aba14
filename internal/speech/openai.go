package speech

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	langpkg "vidscribe/internal/language"
	"vidscribe/internal/services"
)

// ProviderOpenAI is the name reported by the OpenAI recognizer.
const ProviderOpenAI = "openai"

// OpenAIConfig captures the settings for an OpenAI-compatible transcription endpoint.
type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

// OpenAI recognizes audio with the /audio/transcriptions endpoint.
type OpenAI struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAI constructs an OpenAI recognizer. BaseURL lets the client target
// self-hosted servers that speak the same API.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageRecognize, ProviderOpenAI, "api key required", nil)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = openai.Whisper1
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimSuffix(base, "/")
	}
	return &OpenAI{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}, nil
}

// Name implements Recognizer.
func (o *OpenAI) Name() string {
	return ProviderOpenAI
}

// Recognize uploads audioPath and returns the transcription text.
func (o *OpenAI) Recognize(ctx context.Context, audioPath string) (Result, error) {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.Model,
		FilePath: audioPath,
		Language: langpkg.ToISO2(o.cfg.Language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return Result{}, classifyOpenAIError(err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Result{}, noSpeech(ProviderOpenAI, audioPath)
	}
	return Result{Text: text, Provider: ProviderOpenAI, Language: o.cfg.Language}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(ProviderOpenAI, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(ProviderOpenAI, reqErr.HTTPStatusCode, err)
	}
	return classifyStatus(ProviderOpenAI, 0, err)
}
