package centrality

import (
	"context"
	"errors"
	"fmt"

	"github.com/papapumpkin/centrality/internal/matrix"
)

// ErrHopLimit is returned when propagation has not died out after as many
// hops as the graph has nodes.
var ErrHopLimit = errors.New("centrality: hop limit exceeded")

// NeighborhoodScores holds discounted neighborhood centrality for every
// attenuation coefficient. Scores[a][j] is the score of node j (in mask
// order) under coefficient Alphas[a].
type NeighborhoodScores struct {
	Alphas Attenuations
	Scores [][]float64
	// Hops is the number of distance layers that contributed.
	Hops int
}

// Neighborhood computes discounted neighborhood centrality on adjacency mask
// m for every coefficient in alphas.
//
// The score of node j under α is Σ_k α^k · |{i : d(i, j) = k}|, where d is
// the shortest-path hop distance, so near neighbours weigh more than distant
// ones. Distance layers are peeled off one at a time with exact 0/1 masks:
//
// Implementation:
//   - Stage 1: frontier = seen = M. The column sums of M count the nodes at
//     distance 1 of every node; add α¹ times them to each score vector.
//   - Stage 2: W = clip(frontier·M, max=1) marks pairs joined by a walk one
//     hop longer than the frontier.
//   - Stage 3: frontier = clip(W − (I + seen), min=0) keeps only pairs seen
//     for the first time, i.e. pairs at exactly the next distance.
//   - Stage 4: add α^k · colsum(frontier), then seen += frontier.
//   - Stage 5: repeat 2-4 until the frontier is empty.
//
// Only the decay accumulation is floating point; the masks are exact, so
// results do not depend on the backend. For directed graphs column sums
// count in-reachability: the score of j measures how many nodes reach j.
//
// Complexity: at most n hops (n = m.Size()); each hop costs one mask
// product. The context is checked once per hop.
func Neighborhood(ctx context.Context, m matrix.Mask, alphas Attenuations) (*NeighborhoodScores, error) {
	if err := alphas.Validate(); err != nil {
		return nil, err
	}

	n := m.Size()
	res := &NeighborhoodScores{
		Alphas: alphas,
		Scores: make([][]float64, len(alphas)),
	}
	for a := range res.Scores {
		res.Scores[a] = make([]float64, n)
	}

	// powers[a] holds alphas[a]^hop for the hop being accumulated.
	powers := make([]float64, len(alphas))
	copy(powers, alphas)

	seen := m.Clone()
	frontier := m
	for !frontier.IsZero() {
		if res.Hops == n {
			return nil, fmt.Errorf("%w: %d hops on %d nodes", ErrHopLimit, res.Hops+1, n)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("centrality: neighborhood cancelled after %d hops: %w", res.Hops, err)
		}
		res.Hops++

		counts := frontier.ColSums()
		for a, p := range powers {
			scores := res.Scores[a]
			for j, c := range counts {
				if c != 0 {
					scores[j] += p * float64(c)
				}
			}
			powers[a] = p * alphas[a]
		}

		next := frontier.Reach(m)
		next.Exclude(seen)
		seen.Merge(next)
		frontier = next
	}
	return res, nil
}
