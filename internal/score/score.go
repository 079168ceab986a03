// Package score aggregates per-sample exposure into route scores and ranks
// candidate routes deterministically.
package score

import (
	"math"
	"sort"

	"github.com/mansikatarey/Umbra/internal/types"
)

// NeutralScore is the fallback score callers may assign to a route whose
// environment coverage is entirely missing.
const NeutralScore = 50

// Score computes the segment-length-weighted shaded fraction of a route.
// Each sample is weighted by the half-spans to its neighbors, so uniformly
// spaced samples carry equal weight. Unknown samples are excluded from the
// denominator. A pure function: identical input always yields an identical
// result.
func Score(route types.CandidateRoute, samples []types.SamplePoint) (types.RouteScore, error) {
	if len(samples) == 0 {
		return types.RouteScore{}, types.InvalidParameterError{Param: "samples", Reason: "at least one sample required"}
	}

	weights := sampleWeights(samples)

	var shadedW, knownW float64
	for i, s := range samples {
		switch s.Exposure {
		case types.ExposureShaded:
			shadedW += weights[i]
			knownW += weights[i]
		case types.ExposureSunlit:
			knownW += weights[i]
		}
	}

	if knownW == 0 {
		return types.RouteScore{}, types.InsufficientDataError{RouteID: route.ID}
	}

	fraction := shadedW / knownW
	return types.RouteScore{
		RouteID:        route.ID,
		Score:          int(math.Round(fraction * 100)),
		ShadedM:        fraction * route.DistanceM,
		ShadedFraction: fraction,
		Samples:        len(samples),
		DistanceM:      route.DistanceM,
		DurationS:      route.DurationS,
	}, nil
}

// sampleWeights assigns each sample half the span to each neighbor, with
// boundary samples extended by their single adjacent span. For uniform
// spacing every sample weighs the same.
func sampleWeights(samples []types.SamplePoint) []float64 {
	n := len(samples)
	weights := make([]float64, n)
	if n == 1 {
		weights[0] = 1
		return weights
	}
	weights[0] = samples[1].DistanceM - samples[0].DistanceM
	weights[n-1] = samples[n-1].DistanceM - samples[n-2].DistanceM
	for i := 1; i < n-1; i++ {
		weights[i] = (samples[i+1].DistanceM - samples[i-1].DistanceM) / 2
	}
	return weights
}

// Rank orders scores descending by score, then ascending by duration, then
// ascending by route ID. The comparator is a total order, so ranking the
// same input twice yields identical output. The input slice is not mutated.
func Rank(scores []types.RouteScore) types.RankedResult {
	ranked := make([]types.RouteScore, len(scores))
	copy(ranked, scores)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].DurationS != ranked[j].DurationS {
			return ranked[i].DurationS < ranked[j].DurationS
		}
		return ranked[i].RouteID < ranked[j].RouteID
	})

	return types.RankedResult{Routes: ranked}
}
