package langdetect

import (
	"fmt"

	"github.com/abadojack/whatlanggo"
)

// Detector guesses the language of a text. Detection failures are non-fatal
// for callers; the result only feeds a display hint.
type Detector interface {
	Detect(text string) (string, error)
}

type WhatlangDetector struct{}

var _ Detector = &WhatlangDetector{}

func NewWhatlangDetector() *WhatlangDetector {
	return &WhatlangDetector{}
}

// Detect returns the ISO 639-3 code of the detected language, or an error
// when the guess is too unreliable to show.
func (d *WhatlangDetector) Detect(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("empty text")
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", fmt.Errorf("detection not reliable")
	}
	return info.Lang.Iso6393(), nil
}
