// Package kernel provides kernel derivative oracles for the kernel
// exponential family estimators.
//
// An oracle binds a kernel function to an N x D data matrix and answers pure
// derivative queries addressed by sample indices in [0, N) and coordinate
// indices in [0, D). The estimators consume the oracle as a capability set;
// concrete kernels (Gaussian, ...) are interchangeable implementations.
package kernel

import "gonum.org/v1/gonum/mat"

// DerivativeOracle is the set of kernel derivative queries the estimators
// consume.
//
// Argument convention: sample a is the left argument of k(x_a, x_b) and all
// Dx* derivatives are taken with respect to it. Swapping the argument order
// flips the sign of odd-order derivatives; the evaluators depend on this and
// carry explicit sign flips at the affected call sites.
//
// Queries are pure functions of their indices and the bound data, so an
// oracle is safe for concurrent use by multiple goroutines.
type DerivativeOracle interface {
	// NumSamples returns the number of samples N the oracle is bound to.
	NumSamples() int
	// NumDims returns the coordinate count D.
	NumDims() int

	// Dx returns d/dx_{a,i} k(x_a, x_b).
	Dx(a, b, i int) float64
	// DxDx returns d^2/dx_{a,i}^2 k(x_a, x_b).
	DxDx(a, b, i int) float64
	// DxDy returns the mixed derivative d^2/(dx_{a,i} dx_{b,j}) k(x_a, x_b).
	DxDy(a, b, i, j int) float64
	// DxDxDy returns d^3/(dx_{a,i}^2 dx_{b,j}) k(x_a, x_b).
	DxDxDy(a, b, i, j int) float64
	// DxDxDyDy returns d^4/(dx_{a,i}^2 dx_{b,j}^2) k(x_a, x_b).
	DxDxDyDy(a, b, i, j int) float64

	// DxIDxIDxJ returns the D-vector over j of
	// d^3/(dx_{a,i}^2 dx_{a,j}) k(x_a, x_b).
	DxIDxIDxJ(a, b, i int) []float64
	// DxIDxJ returns row i of the left-argument Hessian of k(x_a, x_b) as a
	// D-vector over j.
	DxIDxJ(a, b, i int) []float64

	// DxIDxJDxKDxKRowSum returns the D x D matrix with entries
	// sum_k d^4/(dx_{a,i} dx_{a,j} dx_{a,k}^2) k(x_a, x_b).
	DxIDxJDxKDxKRowSum(a, b int) *mat.Dense
	// DxIDxJDxKDotVec contracts the third-order left-argument derivative
	// tensor with beta, returning the D x D matrix with entries
	// sum_k d^3/(dx_{a,i} dx_{a,j} dx_{a,k}) k(x_a, x_b) * beta[k].
	DxIDxJDxKDotVec(a, b int, beta []float64) *mat.Dense

	// DxIDxJDxKDxKRowSumComponent returns the (i, j) entry of
	// DxIDxJDxKDxKRowSum, enabling diagonal-only evaluation.
	DxIDxJDxKDxKRowSumComponent(a, b, i, j int) float64
	// DxIDxJDxKDotVecComponent returns the (i, j) entry of DxIDxJDxKDotVec.
	DxIDxJDxKDotVecComponent(a, b int, beta []float64, i, j int) float64
}
