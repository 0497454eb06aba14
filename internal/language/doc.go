// Package language normalizes the language settings handed to speech
// recognizers.
//
// Cloud recognizers disagree on the form they accept: Google Speech expects
// a BCP 47 tag such as "en-US", OpenAI's transcription endpoint and WhisperX
// expect a bare ISO 639-1 code such as "en". Everything here is built on
// golang.org/x/text/language so both forms are derived from one parse.
package language
