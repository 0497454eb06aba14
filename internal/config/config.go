package config

// Paths contains directory configuration.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	StateDir  string `toml:"state_dir"`
}

// Audio contains extraction and chunking parameters.
type Audio struct {
	SampleRate    int    `toml:"sample_rate"`
	Channels      int    `toml:"channels"`
	ChunkSeconds  int    `toml:"chunk_seconds"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Speech selects the recognizer and shared request settings.
type Speech struct {
	Provider       string `toml:"provider"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Google contains configuration for the Cloud Speech-to-Text API.
type Google struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// OpenAI contains configuration for OpenAI-compatible transcription endpoints.
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// WhisperX contains configuration for local WhisperX transcription.
type WhisperX struct {
	Model       string `toml:"model"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
}

// Output controls where and how transcripts are written.
type Output struct {
	Mode   string `toml:"mode"`
	Suffix string `toml:"suffix"`
	Echo   bool   `toml:"echo"`
}

// History toggles the SQLite run log.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Workflow contains housekeeping settings.
type Workflow struct {
	StaleWorkHours int `toml:"stale_work_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidscribe.
//
// Configuration sections by subsystem:
//   - Paths: input/output folders, scratch and state directories
//   - Audio: ffmpeg binaries, target sample rate/channels, chunk length
//   - Speech: provider selection, language, timeouts and retries
//   - Google, OpenAI, WhisperX: provider credentials and models
//   - Output: transcript write mode, file suffix, console echo
//   - History: SQLite run log
//   - Workflow: stale work directory cleanup
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Audio    Audio    `toml:"audio"`
	Speech   Speech   `toml:"speech"`
	Google   Google   `toml:"google"`
	OpenAI   OpenAI   `toml:"openai"`
	WhisperX WhisperX `toml:"whisperx"`
	Output   Output   `toml:"output"`
	History  History  `toml:"history"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}
