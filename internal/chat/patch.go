package chat

import (
	"fmt"
	"strings"

	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/models"
)

// ApplyPatch validates a proposed edit and merges it over a deep copy of the
// itinerary. Days the patch does not name carry over byte-for-byte; the
// original value is never mutated. Validation failures return a
// PATCH_REJECTED error and leave the caller's itinerary untouched.
func ApplyPatch(it *models.Itinerary, patch *models.ItineraryPatch) (*models.Itinerary, error) {
	if it == nil {
		return nil, apperrors.NewPatchRejected("there is no itinerary to edit")
	}
	if patch.IsEmpty() {
		return nil, apperrors.NewPatchRejected("the edit was empty")
	}
	if err := validatePatch(patch, len(it.Days)); err != nil {
		return nil, err
	}

	updated := it.Clone()
	for _, dp := range patch.Days {
		day := &updated.Days[dp.Day-1]
		if dp.Morning != nil {
			day.Morning = *dp.Morning
		}
		if dp.Afternoon != nil {
			day.Afternoon = *dp.Afternoon
		}
		if dp.Evening != nil {
			day.Evening = *dp.Evening
		}
	}
	if patch.Rationale != "" {
		updated.Rationale = patch.Rationale
	}
	return updated, nil
}

func validatePatch(patch *models.ItineraryPatch, numDays int) error {
	seen := make(map[int]bool, len(patch.Days))
	for _, dp := range patch.Days {
		if dp.Day < 1 || dp.Day > numDays {
			return apperrors.NewPatchRejected(
				fmt.Sprintf("day %d is outside the trip (1-%d)", dp.Day, numDays))
		}
		if seen[dp.Day] {
			return apperrors.NewPatchRejected(fmt.Sprintf("day %d appears twice", dp.Day))
		}
		seen[dp.Day] = true

		if dp.Morning == nil && dp.Afternoon == nil && dp.Evening == nil {
			return apperrors.NewPatchRejected(fmt.Sprintf("day %d changes nothing", dp.Day))
		}
		for _, slot := range []*models.SlotPlan{dp.Morning, dp.Afternoon, dp.Evening} {
			if slot != nil && strings.TrimSpace(slot.Activity) == "" {
				return apperrors.NewPatchRejected(
					fmt.Sprintf("day %d sets an empty activity", dp.Day))
			}
		}
	}
	return nil
}
