package generator

import "math/rand"

// weightedIndex picks an index with the given probability weights.
// Weights are expected to sum to 1; the last index absorbs any float drift.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

func choiceString(rng *rand.Rand, items []string, weights []float64) string {
	return items[weightedIndex(rng, weights)]
}

func choiceInt(rng *rand.Rand, items []int, weights []float64) int {
	return items[weightedIndex(rng, weights)]
}

// intBetween returns a uniform int in [lo, hi)
func intBetween(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo)
}

// floatBetween returns a uniform float in [lo, hi)
func floatBetween(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
