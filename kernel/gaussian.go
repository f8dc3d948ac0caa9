package kernel

import (
	"math"

	"github.com/densitylab/kexpgo/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const badBetaLength = "kernel: beta vector length mismatch"

var _ DerivativeOracle = (*Gaussian)(nil)

// Gaussian is a derivative oracle for the Gaussian kernel
//
//	k(x, y) = exp(-||x - y||^2 / sigma)
//
// bound to an N x D data matrix. All derivative components are closed form in
// the difference vector u = x_a - x_b, so every query is a pure function of
// its indices and safe for concurrent use.
type Gaussian struct {
	data  *mat.Dense
	n, d  int
	sigma float64
	c     float64 // 2/sigma, the factor carried by each derivative order
}

// NewGaussian binds a Gaussian kernel oracle to data with the given sigma.
func NewGaussian(data *mat.Dense, sigma float64) (*Gaussian, error) {
	if data == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "kernel.NewGaussian")
	}
	n, d := data.Dims()
	if n == 0 || d == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "kernel.NewGaussian")
	}
	if sigma <= 0 {
		return nil, errors.NewValidationError("sigma", "must be positive", sigma)
	}
	return &Gaussian{
		data:  data,
		n:     n,
		d:     d,
		sigma: sigma,
		c:     2 / sigma,
	}, nil
}

// NumSamples returns the number of samples the oracle is bound to.
func (g *Gaussian) NumSamples() int { return g.n }

// NumDims returns the coordinate count.
func (g *Gaussian) NumDims() int { return g.d }

// Sigma returns the kernel width parameter.
func (g *Gaussian) Sigma() float64 { return g.sigma }

// diff fills u with x_a - x_b and returns the squared distance.
func (g *Gaussian) diff(a, b int, u []float64) float64 {
	var sq float64
	for i := 0; i < g.d; i++ {
		u[i] = g.data.At(a, i) - g.data.At(b, i)
		sq += u[i] * u[i]
	}
	return sq
}

// Eval returns the kernel value k(x_a, x_b).
func (g *Gaussian) Eval(a, b int) float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	return math.Exp(-sq / g.sigma)
}

// Dx returns d/dx_{a,i} k(x_a, x_b).
func (g *Gaussian) Dx(a, b, i int) float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	return -g.c * u[i] * math.Exp(-sq/g.sigma)
}

// DxDx returns d^2/dx_{a,i}^2 k(x_a, x_b).
func (g *Gaussian) DxDx(a, b, i int) float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	return kval * (g.c*g.c*u[i]*u[i] - g.c)
}

// DxDy returns d^2/(dx_{a,i} dx_{b,j}) k(x_a, x_b).
func (g *Gaussian) DxDy(a, b, i, j int) float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	return kval * (g.c*delta(i, j) - g.c*g.c*u[i]*u[j])
}

// DxDxDy returns d^3/(dx_{a,i}^2 dx_{b,j}) k(x_a, x_b).
func (g *Gaussian) DxDxDy(a, b, i, j int) float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	c2 := g.c * g.c
	c3 := c2 * g.c
	return kval * (c3*u[i]*u[i]*u[j] - c2*u[j] - 2*c2*u[i]*delta(i, j))
}

// DxDxDyDy returns d^4/(dx_{a,i}^2 dx_{b,j}^2) k(x_a, x_b).
func (g *Gaussian) DxDxDyDy(a, b, i, j int) float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	c2 := g.c * g.c
	c3 := c2 * g.c
	c4 := c3 * g.c
	dij := delta(i, j)
	return kval * (c4*u[i]*u[i]*u[j]*u[j] -
		c3*(u[i]*u[i]+u[j]*u[j]) -
		4*c3*u[i]*u[j]*dij +
		c2 + 2*c2*dij)
}

// DxIDxIDxJ returns the D-vector over j of d^3/(dx_{a,i}^2 dx_{a,j}) k(x_a, x_b).
func (g *Gaussian) DxIDxIDxJ(a, b, i int) []float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	c2 := g.c * g.c
	c3 := c2 * g.c
	out := make([]float64, g.d)
	for j := 0; j < g.d; j++ {
		out[j] = kval * (-c3*u[i]*u[i]*u[j] + c2*(u[j]+2*delta(i, j)*u[i]))
	}
	return out
}

// DxIDxJ returns row i of the left-argument Hessian as a D-vector over j.
func (g *Gaussian) DxIDxJ(a, b, i int) []float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	c2 := g.c * g.c
	out := make([]float64, g.d)
	for j := 0; j < g.d; j++ {
		out[j] = kval * (c2*u[i]*u[j] - g.c*delta(i, j))
	}
	return out
}

// DxIDxJDxKDxKRowSum returns the D x D matrix with entries
// sum_k d^4/(dx_{a,i} dx_{a,j} dx_{a,k}^2) k(x_a, x_b).
func (g *Gaussian) DxIDxJDxKDxKRowSum(a, b int) *mat.Dense {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	out := mat.NewDense(g.d, g.d, nil)
	for i := 0; i < g.d; i++ {
		for j := 0; j < g.d; j++ {
			out.Set(i, j, g.rowSumEntry(kval, sq, u, i, j))
		}
	}
	return out
}

// DxIDxJDxKDxKRowSumComponent returns the (i, j) entry of DxIDxJDxKDxKRowSum.
func (g *Gaussian) DxIDxJDxKDxKRowSumComponent(a, b, i, j int) float64 {
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	return g.rowSumEntry(kval, sq, u, i, j)
}

// rowSumEntry evaluates one entry of the row-summed fourth derivative tensor.
// Contracting the pair (k, k) of d^4/(dx_i dx_j dx_k dx_l) and summing over k
// collapses the six delta-pair terms into the closed form below.
func (g *Gaussian) rowSumEntry(kval, sq float64, u []float64, i, j int) float64 {
	c2 := g.c * g.c
	c3 := c2 * g.c
	c4 := c3 * g.c
	dij := delta(i, j)
	df := float64(g.d)
	return kval * (c4*u[i]*u[j]*sq -
		c3*(dij*sq+(df+4)*u[i]*u[j]) +
		c2*(df+2)*dij)
}

// DxIDxJDxKDotVec contracts the third-order left-argument derivative tensor
// with beta. beta must have length D.
func (g *Gaussian) DxIDxJDxKDotVec(a, b int, beta []float64) *mat.Dense {
	if len(beta) != g.d {
		panic(badBetaLength)
	}
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	ub := dot(u, beta)
	out := mat.NewDense(g.d, g.d, nil)
	for i := 0; i < g.d; i++ {
		for j := 0; j < g.d; j++ {
			out.Set(i, j, g.dotVecEntry(kval, ub, u, beta, i, j))
		}
	}
	return out
}

// DxIDxJDxKDotVecComponent returns the (i, j) entry of DxIDxJDxKDotVec.
func (g *Gaussian) DxIDxJDxKDotVecComponent(a, b int, beta []float64, i, j int) float64 {
	if len(beta) != g.d {
		panic(badBetaLength)
	}
	u := make([]float64, g.d)
	sq := g.diff(a, b, u)
	kval := math.Exp(-sq / g.sigma)
	return g.dotVecEntry(kval, dot(u, beta), u, beta, i, j)
}

// dotVecEntry evaluates one entry of the beta-contracted third derivative
// tensor. ub is the precomputed dot product of u and beta.
func (g *Gaussian) dotVecEntry(kval, ub float64, u, beta []float64, i, j int) float64 {
	c2 := g.c * g.c
	c3 := c2 * g.c
	return kval * (-c3*u[i]*u[j]*ub +
		c2*(delta(i, j)*ub+u[j]*beta[i]+u[i]*beta[j]))
}

func delta(i, j int) float64 {
	if i == j {
		return 1
	}
	return 0
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
