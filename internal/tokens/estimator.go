// Package tokens provides a heuristic token-cost estimate for prompt text.
// It is a character-count approximation, not an exact tokenizer, and is used
// only for UI preview before committing to a paid model call.
package tokens

import (
	"strings"

	"github.com/devtrail/idea-engine/internal/models"
)

// charsPerToken is the conservative average used by the estimate. Real
// tokenizers yield roughly 4 characters per token for English prose.
const charsPerToken = 4

// Estimator computes token estimates against a fixed high-usage threshold
type Estimator struct {
	highUsageThreshold int
}

// NewEstimator creates an estimator. A non-positive threshold disables the
// high-usage flag.
func NewEstimator(highUsageThreshold int) *Estimator {
	return &Estimator{highUsageThreshold: highUsageThreshold}
}

// Estimate returns the heuristic token estimate for text. The estimate is
// monotonic: appending content never lowers it.
func (e *Estimator) Estimate(text string) models.TokenEstimate {
	chars := len(text)
	est := models.TokenEstimate{
		CharCount:       chars,
		WordCount:       len(strings.Fields(text)),
		EstimatedTokens: EstimateFromChars(chars),
	}
	if e.highUsageThreshold > 0 && est.EstimatedTokens >= e.highUsageThreshold {
		est.HighUsage = true
	}
	return est
}

// EstimateFromChars converts a character count to an estimated token count,
// rounding up so the estimate errs on the expensive side
func EstimateFromChars(chars int) int {
	if chars <= 0 {
		return 0
	}
	return (chars + charsPerToken - 1) / charsPerToken
}
