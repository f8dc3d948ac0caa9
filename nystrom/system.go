package nystrom

import (
	"log/slog"

	"github.com/densitylab/kexpgo/core/parallel"
	"github.com/densitylab/kexpgo/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// computeH returns the score-matching right-hand-side vector indexed by basis
// entries: h[k] = (1/N) sum_{b,j} d^3/(dx_{b,j}^2 dx_{a_k,i_k}) k(x_b, x_{a_k}).
// Each slot is an independent accumulation, so workers write disjointly.
func (e *Estimator) computeH() []float64 {
	n, d := e.data.Dims()
	m := len(e.basis)

	h := make([]float64, m)
	parallel.ParallelizeWithThreshold(m, e.parallelThreshold, func(start, end int) {
		for idx := start; idx < end; idx++ {
			a, i := IdxToAI(e.basis[idx], d)
			var sum float64
			for b := 0; b < n; b++ {
				for j := 0; j < d; j++ {
					sum += e.kernel.DxDxDy(b, a, j, i)
				}
			}
			h[idx] = sum / float64(n)
		}
	})
	return h
}

// computeXiNorm2 returns the squared norm of the xi term as a parallel sum
// reduction over the basis, with per-worker partial accumulators merged at
// the end.
func (e *Estimator) computeXiNorm2() float64 {
	n, d := e.data.Dims()
	m := len(e.basis)

	xiNorm2 := parallel.SumWithThreshold(m, e.parallelThreshold, func(start, end int) float64 {
		var sum float64
		for idx := start; idx < end; idx++ {
			a, i := IdxToAI(e.basis[idx], d)
			for b := 0; b < n; b++ {
				for j := 0; j < d; j++ {
					sum += e.kernel.DxDxDyDy(a, b, i, j)
				}
			}
		}
		return sum
	})

	// Compatibility contract: the divisor is N*N even though the sum runs
	// over m*N*D terms. Changing it would rescale every fitted coefficient.
	return xiNorm2 / float64(n*n)
}

// buildSystem assembles the dense symmetric system (A, b) of side m+1 that
// defines the regularised score-matching normal equations:
//
//	A[0,0]   = ||h||^2/N + lambda*xi2
//	A[1:,1:] = G^T G / N + lambda*Ghat
//	A[1:,0]  = Ghat h / N + lambda*h
//	b        = (-xi2, -h)
//
// where G is the column-sub-sampled kernel Hessian of shape (N*D) x m and
// Ghat its m x m row sub-sample. A is returned as a SymDense built from the
// upper triangle, so the mirrored entries are exact rather than recomputed.
func (e *Estimator) buildSystem() (*mat.SymDense, *mat.VecDense) {
	n, d := e.data.Dims()
	nd := n * d
	m := len(e.basis)

	slog.Debug("computing h", log.ModelNameKey, "Nystrom", log.PhaseKey, "compute_h")
	h := e.computeH()

	slog.Debug("computing xi norm", log.ModelNameKey, "Nystrom", log.PhaseKey, "compute_xi_norm")
	xiNorm2 := e.computeXiNorm2()

	slog.Debug("creating sub-sampled kernel Hessians",
		log.ModelNameKey, "Nystrom",
		log.PhaseKey, "build_system",
	)

	colSubSampledHessian := mat.NewDense(nd, m, nil)
	subSampledHessian := mat.NewDense(m, m, nil)

	// Workers own disjoint columns of both matrices.
	parallel.ParallelizeWithThreshold(m, e.parallelThreshold, func(start, end int) {
		for c := start; c < end; c++ {
			a, i := IdxToAI(e.basis[c], d)
			for r := 0; r < nd; r++ {
				b, j := IdxToAI(r, d)
				colSubSampledHessian.Set(r, c, e.kernel.DxDy(a, b, i, j))
			}
			for r := 0; r < m; r++ {
				subSampledHessian.Set(r, c, colSubSampledHessian.At(e.basis[r], c))
			}
		}
	})

	a := mat.NewSymDense(m+1, nil)
	b := mat.NewVecDense(m+1, nil)

	a.SetSym(0, 0, floats.Dot(h, h)/float64(n)+e.lambda*xiNorm2)

	var gtg mat.Dense
	gtg.Mul(colSubSampledHessian.T(), colSubSampledHessian)
	for r := 0; r < m; r++ {
		for c := r; c < m; c++ {
			a.SetSym(r+1, c+1, gtg.At(r, c)/float64(n)+e.lambda*subSampledHessian.At(r, c))
		}
	}

	hv := mat.NewVecDense(m, h)
	var coupling mat.VecDense
	coupling.MulVec(subSampledHessian, hv)
	for r := 0; r < m; r++ {
		a.SetSym(0, r+1, coupling.AtVec(r)/float64(n)+e.lambda*h[r])
	}

	b.SetVec(0, -xiNorm2)
	for r := 0; r < m; r++ {
		b.SetVec(r+1, -h[r])
	}

	return a, b
}
