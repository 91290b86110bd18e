// Package eval computes ranking-quality metrics for retrieval results
// against a user-declared set of relevant IDs. Relevance is binary.
package eval

import (
	"math"
	"strings"
)

// GoldSet is a set of relevant IDs.
type GoldSet map[string]struct{}

// NewGoldSet builds a set from a list of IDs.
func NewGoldSet(ids ...string) GoldSet {
	s := make(GoldSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (g GoldSet) Contains(id string) bool {
	_, ok := g[id]
	return ok
}

// ParseGoldIDs parses a user-supplied block of IDs, one per line or
// comma-separated (both at once are accepted). Whitespace is trimmed,
// empty entries dropped, duplicates collapse.
func ParseGoldIDs(text string) GoldSet {
	normalized := strings.ReplaceAll(text, ",", "\n")
	set := make(GoldSet)
	for _, line := range strings.Split(normalized, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// dcg is the discounted cumulative gain of per-rank gains:
// sum of gain_i / log2(i+2) for zero-based rank i.
func dcg(gains []float64) float64 {
	sum := 0.0
	for i, g := range gains {
		sum += g / math.Log2(float64(i)+2)
	}
	return sum
}

// NDCGAtK returns the normalized DCG of the top-k predictions, in [0,1].
// Returns 0 when k <= 0 or no relevant item survives the cutoff.
func NDCGAtK(predIDs []string, goldIDs GoldSet, k int) float64 {
	if k <= 0 {
		return 0.0
	}
	if k > len(predIDs) {
		k = len(predIDs)
	}
	gains := make([]float64, k)
	relevant := 0
	for i, id := range predIDs[:k] {
		if goldIDs.Contains(id) {
			gains[i] = 1.0
			relevant++
		}
	}
	// Ideal ordering moves every relevant item to the front.
	ideal := make([]float64, k)
	for i := 0; i < relevant; i++ {
		ideal[i] = 1.0
	}
	idcg := dcg(ideal)
	if idcg == 0 {
		return 0.0
	}
	return dcg(gains) / idcg
}

// RecallAtK returns the fraction of relevant IDs found in the top-k
// predictions. Returns 0 for an empty gold set or k <= 0.
func RecallAtK(predIDs []string, goldIDs GoldSet, k int) float64 {
	if len(goldIDs) == 0 || k <= 0 {
		return 0.0
	}
	if k > len(predIDs) {
		k = len(predIDs)
	}
	hits := 0
	seen := make(map[string]struct{}, k)
	for _, id := range predIDs[:k] {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if goldIDs.Contains(id) {
			hits++
		}
	}
	return float64(hits) / float64(len(goldIDs))
}

// MRR returns the reciprocal rank of the first relevant prediction
// (rank starts at 1), or 0 when none match.
func MRR(predIDs []string, goldIDs GoldSet) float64 {
	for i, id := range predIDs {
		if goldIDs.Contains(id) {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}
