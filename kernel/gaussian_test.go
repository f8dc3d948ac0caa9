package kernel

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const (
	fdStep = 1e-6
	fdTol  = 1e-5
	sigma  = 1.5
)

func testData() *mat.Dense {
	return mat.NewDense(4, 3, []float64{
		0.3, -0.7, 0.1,
		-0.2, 0.5, 0.9,
		1.1, 0.4, -0.6,
		-0.8, -0.3, 0.2,
	})
}

func testOracle(t *testing.T) *Gaussian {
	t.Helper()
	g, err := NewGaussian(testData(), sigma)
	if err != nil {
		t.Fatalf("NewGaussian: %v", err)
	}
	return g
}

// perturbed returns an oracle over a copy of data with entry (a, i) shifted by h.
func perturbed(t *testing.T, a, i int, h float64) *Gaussian {
	t.Helper()
	data := testData()
	data.Set(a, i, data.At(a, i)+h)
	g, err := NewGaussian(data, sigma)
	if err != nil {
		t.Fatalf("NewGaussian: %v", err)
	}
	return g
}

// perturbedAlong returns an oracle with sample a shifted by h*dir.
func perturbedAlong(t *testing.T, a int, dir []float64, h float64) *Gaussian {
	t.Helper()
	data := testData()
	for i, v := range dir {
		data.Set(a, i, data.At(a, i)+h*v)
	}
	g, err := NewGaussian(data, sigma)
	if err != nil {
		t.Fatalf("NewGaussian: %v", err)
	}
	return g
}

var samplePairs = [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 1}, {2, 2}}

func TestNewGaussianValidation(t *testing.T) {
	if _, err := NewGaussian(nil, 1.0); err == nil {
		t.Error("nil data should fail")
	}
	if _, err := NewGaussian(testData(), 0); err == nil {
		t.Error("sigma = 0 should fail")
	}
	if _, err := NewGaussian(testData(), -1); err == nil {
		t.Error("negative sigma should fail")
	}
}

func TestGaussianDims(t *testing.T) {
	g := testOracle(t)
	if g.NumSamples() != 4 || g.NumDims() != 3 {
		t.Errorf("got (%d, %d), want (4, 3)", g.NumSamples(), g.NumDims())
	}
}

func TestGaussianEval(t *testing.T) {
	g := testOracle(t)
	for a := 0; a < 4; a++ {
		if got := g.Eval(a, a); math.Abs(got-1) > 1e-15 {
			t.Errorf("Eval(%d, %d) = %v, want 1", a, a, got)
		}
	}
	for _, p := range samplePairs {
		if math.Abs(g.Eval(p[0], p[1])-g.Eval(p[1], p[0])) > 1e-15 {
			t.Errorf("Eval not symmetric for pair %v", p)
		}
	}
}

func TestGaussianDxFiniteDifference(t *testing.T) {
	g := testOracle(t)
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		for i := 0; i < 3; i++ {
			plus := perturbed(t, a, i, fdStep).Eval(a, b)
			minus := perturbed(t, a, i, -fdStep).Eval(a, b)
			fd := (plus - minus) / (2 * fdStep)
			if got := g.Dx(a, b, i); math.Abs(got-fd) > fdTol {
				t.Errorf("Dx(%d,%d,%d) = %v, finite difference %v", a, b, i, got, fd)
			}
		}
	}
}

func TestGaussianDxDxFiniteDifference(t *testing.T) {
	g := testOracle(t)
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		if a == b {
			// Perturbing a shared sample moves both kernel arguments.
			continue
		}
		for i := 0; i < 3; i++ {
			plus := perturbed(t, a, i, fdStep).Dx(a, b, i)
			minus := perturbed(t, a, i, -fdStep).Dx(a, b, i)
			fd := (plus - minus) / (2 * fdStep)
			if got := g.DxDx(a, b, i); math.Abs(got-fd) > fdTol {
				t.Errorf("DxDx(%d,%d,%d) = %v, finite difference %v", a, b, i, got, fd)
			}
		}
	}
}

func TestGaussianDxDyFiniteDifference(t *testing.T) {
	g := testOracle(t)
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		if a == b {
			// Perturbing one side of a shared sample is not expressible
			// through the bound data.
			continue
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				plus := perturbed(t, b, j, fdStep).Dx(a, b, i)
				minus := perturbed(t, b, j, -fdStep).Dx(a, b, i)
				fd := (plus - minus) / (2 * fdStep)
				if got := g.DxDy(a, b, i, j); math.Abs(got-fd) > fdTol {
					t.Errorf("DxDy(%d,%d,%d,%d) = %v, finite difference %v", a, b, i, j, got, fd)
				}
			}
		}
	}
}

func TestGaussianDxDxDyFiniteDifference(t *testing.T) {
	g := testOracle(t)
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		if a == b {
			continue
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				plus := perturbed(t, b, j, fdStep).DxDx(a, b, i)
				minus := perturbed(t, b, j, -fdStep).DxDx(a, b, i)
				fd := (plus - minus) / (2 * fdStep)
				if got := g.DxDxDy(a, b, i, j); math.Abs(got-fd) > fdTol {
					t.Errorf("DxDxDy(%d,%d,%d,%d) = %v, finite difference %v", a, b, i, j, got, fd)
				}
			}
		}
	}
}

func TestGaussianDxDxDyDyFiniteDifference(t *testing.T) {
	g := testOracle(t)
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		if a == b {
			continue
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				plus := perturbed(t, b, j, fdStep).DxDxDy(a, b, i, j)
				minus := perturbed(t, b, j, -fdStep).DxDxDy(a, b, i, j)
				fd := (plus - minus) / (2 * fdStep)
				if got := g.DxDxDyDy(a, b, i, j); math.Abs(got-fd) > fdTol {
					t.Errorf("DxDxDyDy(%d,%d,%d,%d) = %v, finite difference %v", a, b, i, j, got, fd)
				}
			}
		}
	}
}

func TestGaussianDxIDxJFiniteDifference(t *testing.T) {
	g := testOracle(t)
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		if a == b {
			continue
		}
		for i := 0; i < 3; i++ {
			row := g.DxIDxJ(a, b, i)
			for j := 0; j < 3; j++ {
				plus := perturbed(t, a, j, fdStep).Dx(a, b, i)
				minus := perturbed(t, a, j, -fdStep).Dx(a, b, i)
				fd := (plus - minus) / (2 * fdStep)
				if math.Abs(row[j]-fd) > fdTol {
					t.Errorf("DxIDxJ(%d,%d,%d)[%d] = %v, finite difference %v", a, b, i, j, row[j], fd)
				}
			}
		}
	}
}

func TestGaussianDxIDxIDxJFiniteDifference(t *testing.T) {
	g := testOracle(t)
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		if a == b {
			continue
		}
		for i := 0; i < 3; i++ {
			row := g.DxIDxIDxJ(a, b, i)
			for j := 0; j < 3; j++ {
				plus := perturbed(t, a, j, fdStep).DxDx(a, b, i)
				minus := perturbed(t, a, j, -fdStep).DxDx(a, b, i)
				fd := (plus - minus) / (2 * fdStep)
				if math.Abs(row[j]-fd) > fdTol {
					t.Errorf("DxIDxIDxJ(%d,%d,%d)[%d] = %v, finite difference %v", a, b, i, j, row[j], fd)
				}
			}
		}
	}
}

// The row-summed fourth derivative is the left-argument gradient of
// sum_k d^3/(dx_i dx_k^2), which DxIDxIDxJ exposes as T(k, k, i).
func TestGaussianRowSumFiniteDifference(t *testing.T) {
	g := testOracle(t)
	thirdRowSum := func(o *Gaussian, a, b, i int) float64 {
		var s float64
		for k := 0; k < 3; k++ {
			s += o.DxIDxIDxJ(a, b, k)[i]
		}
		return s
	}
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		if a == b {
			continue
		}
		rs := g.DxIDxJDxKDxKRowSum(a, b)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				plus := thirdRowSum(perturbed(t, a, j, fdStep), a, b, i)
				minus := thirdRowSum(perturbed(t, a, j, -fdStep), a, b, i)
				fd := (plus - minus) / (2 * fdStep)
				if math.Abs(rs.At(i, j)-fd) > fdTol {
					t.Errorf("RowSum(%d,%d)[%d,%d] = %v, finite difference %v", a, b, i, j, rs.At(i, j), fd)
				}
			}
		}
	}
}

// Contracting the third derivative tensor with beta equals the directional
// derivative of the left-argument Hessian along beta.
func TestGaussianDotVecFiniteDifference(t *testing.T) {
	g := testOracle(t)
	beta := []float64{0.4, -1.2, 0.7}
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		if a == b {
			continue
		}
		dv := g.DxIDxJDxKDotVec(a, b, beta)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				plus := perturbedAlong(t, a, beta, fdStep).DxIDxJ(a, b, i)[j]
				minus := perturbedAlong(t, a, beta, -fdStep).DxIDxJ(a, b, i)[j]
				fd := (plus - minus) / (2 * fdStep)
				if math.Abs(dv.At(i, j)-fd) > fdTol {
					t.Errorf("DotVec(%d,%d)[%d,%d] = %v, finite difference %v", a, b, i, j, dv.At(i, j), fd)
				}
			}
		}
	}
}

func TestGaussianComponentsMatchMatrices(t *testing.T) {
	g := testOracle(t)
	beta := []float64{0.9, 0.1, -0.5}
	for _, p := range samplePairs {
		a, b := p[0], p[1]
		rs := g.DxIDxJDxKDxKRowSum(a, b)
		dv := g.DxIDxJDxKDotVec(a, b, beta)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if got := g.DxIDxJDxKDxKRowSumComponent(a, b, i, j); got != rs.At(i, j) {
					t.Errorf("RowSumComponent(%d,%d,%d,%d) = %v, matrix entry %v", a, b, i, j, got, rs.At(i, j))
				}
				if got := g.DxIDxJDxKDotVecComponent(a, b, beta, i, j); got != dv.At(i, j) {
					t.Errorf("DotVecComponent(%d,%d,%d,%d) = %v, matrix entry %v", a, b, i, j, got, dv.At(i, j))
				}
			}
		}
	}
}

// Swapping the kernel arguments flips the sign of odd-order derivatives and
// leaves even-order derivatives unchanged.
func TestGaussianArgumentSwapSigns(t *testing.T) {
	g := testOracle(t)
	beta := []float64{-0.3, 0.8, 0.2}
	a, b := 0, 2
	for i := 0; i < 3; i++ {
		if got, want := g.Dx(b, a, i), -g.Dx(a, b, i); math.Abs(got-want) > 1e-14 {
			t.Errorf("Dx should flip under swap: %v vs %v", got, want)
		}
		if got, want := g.DxDx(b, a, i), g.DxDx(a, b, i); math.Abs(got-want) > 1e-14 {
			t.Errorf("DxDx should be invariant under swap: %v vs %v", got, want)
		}
		swapped := g.DxIDxIDxJ(b, a, i)
		orig := g.DxIDxIDxJ(a, b, i)
		for j := 0; j < 3; j++ {
			if math.Abs(swapped[j]+orig[j]) > 1e-14 {
				t.Errorf("DxIDxIDxJ should flip under swap at j=%d", j)
			}
			if got, want := g.DxDy(b, a, i, j), g.DxDy(a, b, i, j); math.Abs(got-want) > 1e-14 {
				t.Errorf("DxDy should be invariant under swap: %v vs %v", got, want)
			}
			if got, want := g.DxDxDy(b, a, i, j), -g.DxDxDy(a, b, i, j); math.Abs(got-want) > 1e-14 {
				t.Errorf("DxDxDy should flip under swap: %v vs %v", got, want)
			}
		}
	}
	rs, rsSwap := g.DxIDxJDxKDxKRowSum(a, b), g.DxIDxJDxKDxKRowSum(b, a)
	dv, dvSwap := g.DxIDxJDxKDotVec(a, b, beta), g.DxIDxJDxKDotVec(b, a, beta)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(rs.At(i, j)-rsSwap.At(i, j)) > 1e-14 {
				t.Errorf("RowSum should be invariant under swap at (%d,%d)", i, j)
			}
			if math.Abs(dv.At(i, j)+dvSwap.At(i, j)) > 1e-14 {
				t.Errorf("DotVec should flip under swap at (%d,%d)", i, j)
			}
		}
	}
}

func TestGaussianBetaLengthPanics(t *testing.T) {
	g := testOracle(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for short beta")
		}
	}()
	g.DxIDxJDxKDotVec(0, 1, []float64{1, 2})
}
