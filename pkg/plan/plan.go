package plan

import (
	"errors"
	"fmt"

	"github.com/AmitMY/chimera/pkg/common"
)

// ErrInvalidTarget is returned when the display budget is below 1.
var ErrInvalidTarget = errors.New("sample target count must be at least 1")

// AttachRanks returns a copy of plans with Rank set to the 1-based position
// of each plan in the given order.
func AttachRanks(plans common.LinearizationSet) common.LinearizationSet {
	ranked := make(common.LinearizationSet, len(plans))
	for i, p := range plans {
		p.Rank = i + 1
		ranked[i] = p
	}
	return ranked
}

// SampleIndices returns the positions Sample keeps for a list of n plans.
//
// With amount = target-1 and step = ceil(n/amount) the indices are
// 0, step, ..., (amount-1)*step followed by n-1. Indices the stride walks
// past the end are clamped to n-1, so the result always holds target
// entries and may repeat the last one. A target of 1 keeps only the last
// index.
func SampleIndices(n, target int) ([]int, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTarget, target)
	}

	amount := target - 1
	indices := make([]int, 0, target)
	if amount > 0 {
		step := (n + amount - 1) / amount
		for i := 0; i < amount; i++ {
			indices = append(indices, min(i*step, n-1))
		}
	}
	return append(indices, n-1), nil
}

// Sample reduces plans to target entries by fixed-stride selection, always
// keeping the first and the last plan. Lists that already fit the budget are
// returned unchanged. Ranks are carried over untouched.
func Sample(plans common.LinearizationSet, target int) (common.LinearizationSet, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTarget, target)
	}
	if len(plans) <= target {
		return plans, nil
	}

	indices, err := SampleIndices(len(plans), target)
	if err != nil {
		return nil, err
	}

	sampled := make(common.LinearizationSet, 0, len(indices))
	for _, idx := range indices {
		sampled = append(sampled, plans[idx])
	}
	return sampled, nil
}
