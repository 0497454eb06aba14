// Package preflight provides readiness checks for the tools, directories,
// and credentials a transcription run depends on.
//
// These checks run in two contexts:
//   - "vidscribe check" runs RunAll and prints every result.
//   - The pipeline calls FreeBytes before extracting audio so a long video
//     fails fast instead of filling the disk halfway through.
package preflight
