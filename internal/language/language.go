package language

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Tag is a parsed language setting.
type Tag struct {
	// BCP47 is the canonical tag, e.g. "en-US".
	BCP47 string
	// ISO2 is the ISO 639-1 base language, e.g. "en". Empty when the base
	// language has no two-letter code.
	ISO2 string
}

// Normalize parses value as a BCP 47 tag. Underscores are accepted as
// separators ("en_US") since they show up in locale environment variables.
func Normalize(value string) (Tag, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), "_", "-")
	if cleaned == "" {
		return Tag{}, errors.New("language: empty tag")
	}
	parsed, err := language.Parse(cleaned)
	if err != nil {
		return Tag{}, fmt.Errorf("language: parse %q: %w", value, err)
	}
	tag := Tag{BCP47: parsed.String()}
	base, _ := parsed.Base()
	if code := base.String(); len(code) == 2 {
		tag.ISO2 = code
	}
	return tag, nil
}

// ToISO2 returns the ISO 639-1 code for value, or "" when value does not
// parse or has no two-letter form.
func ToISO2(value string) string {
	tag, err := Normalize(value)
	if err != nil {
		return ""
	}
	return tag.ISO2
}

// DisplayName returns a human-readable English name for value.
// Returns "Unknown" for empty input, or the uppercased input when it does not parse.
func DisplayName(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := Normalize(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	parsed := language.Make(tag.BCP47)
	if name := display.English.Tags().Name(parsed); name != "" {
		return name
	}
	return tag.BCP47
}
