// Package speech turns WAV audio into text through a pluggable recognizer.
//
// Three backends are provided:
//
//   - google: Cloud Speech-to-Text v1 synchronous recognition over REST,
//     authenticated with an API key. Audio is sent inline as LINEAR16, which
//     caps each request at roughly one minute of audio.
//   - openai: the OpenAI (or compatible) audio transcription endpoint via
//     go-openai.
//   - whisperx: a local WhisperX run launched through uvx.
//
// Every backend reports audio that produced no text as services.ErrNoSpeech
// and classifies transport failures with the services error markers so
// WithRetry can decide what is worth another attempt.
package speech
