package langmeta

import (
	"context"

	"github.com/abadojack/whatlanggo"
)

// Detection is one candidate source language.
type Detection struct {
	// Code is an ISO 639-1 code, optionally with a region (zh-TW).
	Code string
	// Confidence is a percentage in [0, 100].
	Confidence int
}

// Detector identifies the language of a text. Results are ranked; the
// first element is the detector's best guess. An empty slice means no
// language could be identified.
type Detector interface {
	Detect(ctx context.Context, text string) ([]Detection, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, text string) ([]Detection, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, text string) ([]Detection, error) {
	return f(ctx, text)
}

// Whatlang is a Detector backed by whatlanggo's trigram models.
type Whatlang struct{}

// Detect returns at most one candidate.
func (Whatlang) Detect(_ context.Context, text string) ([]Detection, error) {
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return nil, nil
	}
	conf := int(info.Confidence*100 + 0.5)
	if conf > 100 {
		conf = 100
	}
	return []Detection{{Code: code, Confidence: conf}}, nil
}
