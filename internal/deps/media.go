package deps

// MediaRequirements lists the tools every transcription run needs. uvx is
// required only when the local WhisperX recognizer is selected.
func MediaRequirements(ffmpegBinary, ffprobeBinary string, needUVX bool) []Requirement {
	reqs := []Requirement{
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Extracts and converts the audio track"},
		{Name: "FFprobe", Command: ffprobeBinary, Description: "Inspects videos for audio streams and duration"},
	}
	reqs = append(reqs, Requirement{
		Name:        "uvx",
		Command:     "uvx",
		Description: "Runs WhisperX for local transcription",
		Optional:    !needUVX,
	})
	return reqs
}
