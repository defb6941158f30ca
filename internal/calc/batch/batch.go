package batch

import (
	"fmt"

	"Despiece/internal/calc/despiece"
)

type BeamBatchInput struct {
	Items []despiece.DetailingRequest `json:"items"`
}

type BeamBatchResult struct {
	Results []despiece.DetailingResult `json:"results"`
}

// CalculateBeams runs the detailing engine over every item and stops at the
// first failure so a bad beam never produces a partial schedule set.
func CalculateBeams(in BeamBatchInput) (BeamBatchResult, error) {
	if len(in.Items) == 0 {
		return BeamBatchResult{}, fmt.Errorf("no items")
	}
	out := BeamBatchResult{Results: make([]despiece.DetailingResult, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := despiece.Detail(item)
		if err != nil {
			return BeamBatchResult{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.Results = append(out.Results, *res)
	}
	return out, nil
}
