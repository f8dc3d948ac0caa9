package nystrom

import (
	"math/rand/v2"
	"sort"

	"github.com/densitylab/kexpgo/pkg/errors"
)

// IdxToAI splits a flat RKHS basis index into its (sample, coordinate) pair.
// For data with dims coordinates, flat index idx addresses coordinate
// idx % dims of sample idx / dims. The same codec applies whether idx walks
// the sub-sampled basis or the full N*D product.
func IdxToAI(idx, dims int) (a, i int) {
	return idx / dims, idx % dims
}

// validateBasis checks a user-supplied basis for emptiness, range and
// duplicates and returns a sorted copy.
func validateBasis(inds []int, nd int) ([]int, error) {
	if len(inds) == 0 {
		return nil, errors.NewInvalidBasisError("empty basis", 0)
	}
	sorted := make([]int, len(inds))
	copy(sorted, inds)
	sort.Ints(sorted)
	for k, idx := range sorted {
		if idx < 0 || idx >= nd {
			return nil, errors.NewInvalidBasisError("index out of range", idx)
		}
		if k > 0 && sorted[k-1] == idx {
			return nil, errors.NewInvalidBasisError("duplicate index", idx)
		}
	}
	return sorted, nil
}

// subSampleBasis draws m distinct flat indices uniformly without replacement
// from [0, nd) and returns them sorted ascending. Sorting is part of the
// contract, not an optimisation: the system builder walks the basis in order
// and relies on ascending indices for sequential reads of the data matrix.
func subSampleBasis(m, nd int, rng *rand.Rand) []int {
	perm := rng.Perm(nd)
	inds := make([]int, m)
	copy(inds, perm[:m])
	sort.Ints(inds)
	return inds
}
