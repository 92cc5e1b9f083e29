// Package embeddings compares the vectors returned by the embeddings endpoint.
package embeddings

import (
	"cmp"
	"errors"
	"math"
	"slices"
)

var (
	// ErrEmpty is returned when at least one of the embeddings is empty.
	ErrEmpty = errors.New("at least one of the embeddings is empty")

	// ErrLengthMismatch is returned when two embeddings have different lengths.
	ErrLengthMismatch = errors.New("embeddings must have equal lengths")

	// ErrZeroMagnitude is returned when a cosine similarity is requested for an
	// embedding whose magnitude is zero.
	ErrZeroMagnitude = errors.New("at least one of the embedding magnitudes is zero")
)

func check(a, b []float64) error {
	if len(a) == 0 || len(b) == 0 {
		return ErrEmpty
	}
	if len(a) != len(b) {
		return ErrLengthMismatch
	}
	return nil
}

// Dot returns the dot product of two embeddings.
func Dot(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Cosine calculates the cosine similarity between two embeddings, which
// ranges from -1 (opposite) to 1 (identical direction).
//
// https://en.wikipedia.org/wiki/Cosine_similarity
func Cosine(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0, ErrZeroMagnitude
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// Euclidean calculates the Euclidean (L2) distance between two embeddings.
//
// https://en.wikipedia.org/wiki/Euclidean_distance
func Euclidean(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var sumSquares float64
	for i := range a {
		diff := a[i] - b[i]
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares), nil
}

// Manhattan calculates the Manhattan (L1) distance between two embeddings,
// the total "city block" distance between the two points.
//
// https://en.wikipedia.org/wiki/Taxicab_geometry
func Manhattan(a, b []float64) (float64, error) {
	if err := check(a, b); err != nil {
		return 0, err
	}

	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum, nil
}

// Match is a candidate scored against a query by [Rank].
type Match struct {
	// Index of the candidate in the slice passed to Rank.
	Index int

	// Cosine similarity between the query and the candidate.
	Score float64
}

// Rank scores every candidate against query by cosine similarity and returns
// them most similar first. Candidates with equal scores keep their original
// order.
//
// # Example
//
//	vectors := resp.Embeddings()
//	matches, err := embeddings.Rank(vectors[0], vectors[1:])
func Rank(query []float64, candidates [][]float64) ([]Match, error) {
	matches := make([]Match, 0, len(candidates))
	for i, candidate := range candidates {
		score, err := Cosine(query, candidate)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Index: i, Score: score})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return matches, nil
}
