package highlight

import "math/rand/v2"

// AveragePrecision scores a rank-ordered relevance vector: the mean of the
// precision measured at every relevant position. Empty and all-false vectors
// score 0.
func AveragePrecision(relevance []bool) float64 {
	good, bad := 0, 0
	sum := 0.0
	for _, relevant := range relevance {
		if relevant {
			good++
			sum += float64(good) / float64(good+bad)
		} else {
			bad++
		}
	}
	if good == 0 {
		return 0
	}
	return sum / float64(good)
}

// ShufflePrecision returns the average precision of rounds random
// permutations of relevance, a baseline for how much the ranking helps.
// The input slice is not modified.
func ShufflePrecision(relevance []bool, rounds int, r *rand.Rand) []float64 {
	scores := make([]float64, 0, max(rounds, 0))
	shuffled := make([]bool, len(relevance))
	copy(shuffled, relevance)
	for i := 0; i < rounds; i++ {
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		scores = append(scores, AveragePrecision(shuffled))
	}
	return scores
}
