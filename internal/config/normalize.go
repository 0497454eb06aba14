package config

import (
	"fmt"
	"os"
	"strings"

	langpkg "vidscribe/internal/language"
)

// fill trims *field and replaces a blank result with def.
func fill(field *string, def string) {
	if *field = strings.TrimSpace(*field); *field == "" {
		*field = def
	}
}

// fillFromEnv trims *field and, when blank, takes the first set variable
// among keys. Values from the config file always win.
func fillFromEnv(field *string, keys ...string) {
	if *field = strings.TrimSpace(*field); *field != "" {
		return
	}
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok {
			*field = strings.TrimSpace(v)
			return
		}
	}
}

func (c *Config) normalize() error {
	dirs := []struct {
		key   string
		field *string
		def   string
	}{
		{"paths.input_dir", &c.Paths.InputDir, defaultInputDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.work_dir", &c.Paths.WorkDir, defaultWorkDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
	}
	for _, d := range dirs {
		fill(d.field, d.def)
		expanded, err := ExpandPath(*d.field)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.field = expanded
	}

	fill(&c.Audio.FFmpegBinary, defaultFFmpegBinary)
	fill(&c.Audio.FFprobeBinary, defaultFFprobeBinary)

	c.Speech.Provider = strings.ToLower(c.Speech.Provider)
	fill(&c.Speech.Provider, defaultProvider)
	fill(&c.Speech.Language, defaultLanguage)
	// Unparseable tags stay as written so Validate can name them.
	if tag, err := langpkg.Normalize(c.Speech.Language); err == nil {
		c.Speech.Language = tag.BCP47
	}
	if c.Speech.TimeoutSeconds <= 0 {
		c.Speech.TimeoutSeconds = defaultSpeechTimeoutSeconds
	}
	c.Speech.RetryAttempts = max(c.Speech.RetryAttempts, 1)

	fillFromEnv(&c.Google.APIKey, "GOOGLE_API_KEY", "GOOGLE_SPEECH_API_KEY")
	fill(&c.Google.Model, defaultGoogleModel)
	c.Google.BaseURL = strings.TrimSpace(c.Google.BaseURL)

	fillFromEnv(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	fillFromEnv(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	c.OpenAI.BaseURL = strings.TrimRight(c.OpenAI.BaseURL, "/")
	fill(&c.OpenAI.Model, defaultOpenAIModel)

	fill(&c.WhisperX.Model, defaultWhisperXModel)
	c.WhisperX.VADMethod = strings.ToLower(c.WhisperX.VADMethod)
	fill(&c.WhisperX.VADMethod, defaultWhisperXVADMethod)
	fillFromEnv(&c.WhisperX.HFToken, "HUGGING_FACE_HUB_TOKEN", "HF_TOKEN")

	c.Output.Mode = strings.ToLower(c.Output.Mode)
	fill(&c.Output.Mode, defaultOutputMode)
	fill(&c.Output.Suffix, defaultOutputSuffix)

	c.Workflow.StaleWorkHours = max(c.Workflow.StaleWorkHours, 0)

	if strings.ToLower(strings.TrimSpace(c.Logging.Format)) == "json" {
		c.Logging.Format = "json"
	} else {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	fill(&c.Logging.Level, defaultLogLevel)
	return nil
}
