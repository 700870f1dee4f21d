package plot

import "gonum.org/v1/gonum/floats"

// Summary describes one aggregation result for the metadata endpoint.
type Summary struct {
	TotalPoints    int        `json:"totalPoints"`
	NumPatches     int        `json:"numPatches"`
	NumSignificant int        `json:"numSignificant"`
	ValueStats     ValueStats `json:"valueStats"`
	DensityPerKM2  float64    `json:"densityPerKm2"`
}

type ValueStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
}

// Summarize rolls a patch set up into overall counts, value statistics over
// the significant patches, and the observation density across the covered
// area.
func Summarize(patches []Patch) Summary {
	summary := Summary{NumPatches: len(patches)}

	var values []float64
	for _, p := range patches {
		summary.TotalPoints += p.N
		if p.Significant {
			summary.NumSignificant++
			values = append(values, p.Value)
		}
	}

	if len(values) > 0 {
		sum := floats.Sum(values)
		summary.ValueStats = ValueStats{
			Min:     floats.Min(values),
			Max:     floats.Max(values),
			Sum:     sum,
			Average: sum / float64(len(values)),
		}
	}

	if len(patches) > 0 {
		summary.DensityPerKM2 = DensityPerKM2(summary.TotalPoints, boundsOf(patches))
	}

	return summary
}
