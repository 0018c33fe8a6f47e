package authoring

import (
	"strings"

	"github.com/schoolerp/authoring/internal/domain/shared"
)

// Validate gates submission of the draft set. It fails if the set is empty,
// or if any line has an empty/whitespace-only description, a non-positive
// expected quantity, or a negative unit price.
//
// The failure is a single aggregated signal: the operator gets one message
// and inspects lines manually. This mirrors the behavior the admin app has
// always had; per-line errors would be a behavioral change, not a fix.
func Validate(lines []OrderLineDraft) error {
	if len(lines) == 0 {
		return shared.NewDomainError(shared.ErrCodeValidationFailed, "Order must have at least one line")
	}

	for idx := range lines {
		line := &lines[idx]
		if strings.TrimSpace(line.Description) == "" {
			return invalidLines()
		}
		if line.QuantityExpected <= 0 {
			return invalidLines()
		}
		if line.UnitPrice.IsNegative() {
			return invalidLines()
		}
	}

	return nil
}

func invalidLines() error {
	return shared.NewDomainError(shared.ErrCodeValidationFailed,
		"Every line needs a description, a quantity above zero and a non-negative unit price")
}
