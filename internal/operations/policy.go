package operations

import (
	"errors"
	"fmt"

	"github.com/Epistemic-Technology/pdfsplit/models"
)

// SelectPolicy turns the two user-facing knobs into a split policy.
// Exactly one of pages or maxMegabytes must be set; supplying both is
// rejected rather than silently preferring one.
func SelectPolicy(pages int, maxMegabytes float64) (models.SplitPolicy, error) {
	hasPages := pages != 0
	hasSize := maxMegabytes != 0
	switch {
	case hasPages && hasSize:
		return models.SplitPolicy{}, models.NewError(models.ErrInvalidArgument, "policy",
			errors.New("choose either a page count or a maximum size, not both"))
	case hasPages:
		if pages < 0 {
			return models.SplitPolicy{}, models.NewError(models.ErrInvalidArgument, "pages",
				fmt.Errorf("pages per part must be a positive integer, got %d", pages))
		}
		return models.ByPageCount(pages), nil
	case hasSize:
		policy := models.ByMaxMegabytes(maxMegabytes)
		if policy.MaxBytes <= 0 {
			return models.SplitPolicy{}, models.NewError(models.ErrInvalidArgument, "max size",
				fmt.Errorf("maximum size must be a positive number of megabytes, got %g", maxMegabytes))
		}
		return policy, nil
	default:
		return models.SplitPolicy{}, models.NewError(models.ErrInvalidArgument, "policy",
			errors.New("provide a split mode: a page count or a maximum size"))
	}
}
