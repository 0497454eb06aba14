package config

const (
	defaultInputDir             = "input"
	defaultOutputDir            = "output"
	defaultWorkDir              = "~/.cache/vidscribe/work"
	defaultStateDir             = "~/.local/share/vidscribe"
	defaultSampleRate           = 16000
	defaultChannels             = 1
	defaultChunkSeconds         = 60
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultProvider             = ProviderGoogle
	defaultLanguage             = "en-US"
	defaultSpeechTimeoutSeconds = 120
	defaultSpeechRetryAttempts  = 3
	defaultGoogleModel          = "default"
	defaultOpenAIModel          = "whisper-1"
	defaultWhisperXModel        = "large-v3"
	defaultWhisperXVADMethod    = "silero"
	defaultOutputMode           = OutputModeOverwrite
	defaultOutputSuffix         = "_transcript.txt"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultStaleWorkHours       = 24
)

// Supported speech providers.
const (
	ProviderGoogle   = "google"
	ProviderOpenAI   = "openai"
	ProviderWhisperX = "whisperx"
)

// Supported transcript output modes.
const (
	OutputModeOverwrite = "overwrite"
	OutputModeAppend    = "append"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			StateDir:  defaultStateDir,
		},
		Audio: Audio{
			SampleRate:    defaultSampleRate,
			Channels:      defaultChannels,
			ChunkSeconds:  defaultChunkSeconds,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Speech: Speech{
			Provider:       defaultProvider,
			Language:       defaultLanguage,
			TimeoutSeconds: defaultSpeechTimeoutSeconds,
			RetryAttempts:  defaultSpeechRetryAttempts,
		},
		Google: Google{
			Model: defaultGoogleModel,
		},
		OpenAI: OpenAI{
			Model: defaultOpenAIModel,
		},
		WhisperX: WhisperX{
			Model:     defaultWhisperXModel,
			VADMethod: defaultWhisperXVADMethod,
		},
		Output: Output{
			Mode:   defaultOutputMode,
			Suffix: defaultOutputSuffix,
			Echo:   true,
		},
		History: History{
			Enabled: true,
		},
		Workflow: Workflow{
			StaleWorkHours: defaultStaleWorkHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
