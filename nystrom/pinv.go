package nystrom

import (
	"math"

	"github.com/densitylab/kexpgo/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// machEps is the double precision machine epsilon, 2^-52.
var machEps = math.Nextafter(1, 2) - 1

// pinvSelfAdjoint computes the Moore-Penrose pseudo-inverse of the symmetric
// matrix a through its eigendecomposition A = V diag(s) V^T.
//
// Eigenvalues are inverted only when strictly greater than the tolerance
//
//	tol = eps * n * max_i s_i
//
// and zeroed otherwise. This is the numpy/Octave cut-off rule and is a
// compatibility contract: near-singular systems are truncated silently, and
// the only error condition is an outright eigendecomposition failure.
func pinvSelfAdjoint(a *mat.SymDense) (*mat.Dense, error) {
	n := a.SymmetricDim()

	var eig mat.EigenSym
	if ok := eig.Factorize(a, true); !ok {
		return nil, errors.Wrap(errors.ErrSingularMatrix, "Nystrom.pinvSelfAdjoint: eigendecomposition failed")
	}
	s := eig.Values(nil)
	var v mat.Dense
	eig.VectorsTo(&v)

	tol := machEps * float64(n) * floats.Max(s)

	invS := make([]float64, n)
	dropped := 0
	for i, si := range s {
		if si > tol {
			invS[i] = 1 / si
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		errors.Warn(errors.NewTruncatedSpectrumWarning("Nystrom.pinvSelfAdjoint", dropped, n, tol))
	}

	var vs mat.Dense
	vs.Mul(&v, mat.NewDiagDense(n, invS))
	var pinv mat.Dense
	pinv.Mul(&vs, v.T())
	return &pinv, nil
}
