package translate

import (
	"context"

	"github.com/minios-linux/eztranslate/langmeta"
)

// swapConfidence is the detector confidence (percent) that must be
// exceeded before the secondary target replaces the primary.
const swapConfidence = 50

// ResolveTarget picks the language to translate into. primary and
// secondary are English names. When the detector is confident (> 50%)
// that text is already in primary, secondary is returned; in every other
// case, including detector failure, primary is returned.
//
// An empty secondary falls back to langmeta.FallbackSecondary(primary).
func ResolveTarget(ctx context.Context, det langmeta.Detector, text, primary, secondary string) string {
	if det == nil {
		return primary
	}
	found, err := det.Detect(ctx, text)
	if err != nil || len(found) == 0 {
		return primary
	}

	top := found[0]
	if langmeta.NameForCode(top.Code) != primary || top.Confidence <= swapConfidence {
		return primary
	}
	if secondary == "" {
		return langmeta.FallbackSecondary(primary)
	}
	return secondary
}
