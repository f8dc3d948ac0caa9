package nystrom

import (
	"github.com/densitylab/kexpgo/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// checkEvaluate guards evaluator entry: the estimator must be fitted and the
// query index must address a bound sample.
func (e *Estimator) checkEvaluate(method string, idxTest int) error {
	if !e.IsFitted() {
		return errors.NewNotFittedError("Nystrom", method)
	}
	n, _ := e.data.Dims()
	if idxTest < 0 || idxTest >= n {
		return errors.NewIndexOutOfRangeError("Nystrom."+method, idxTest, n)
	}
	return nil
}

// LogPDF evaluates the unnormalised log density at the bound sample idxTest.
func (e *Estimator) LogPDF(idxTest int) (float64, error) {
	if err := e.checkEvaluate("LogPDF", idxTest); err != nil {
		return 0, err
	}
	n, _ := e.data.Dims()
	d := e.kernel.NumDims()

	var xi, betaSum float64
	for k, idx := range e.basis {
		a, i := IdxToAI(idx, d)
		xi += e.kernel.DxDx(a, idxTest, i)
		// Sign flip: the oracle differentiates its left argument, which here
		// is the basis point rather than the evaluation point.
		betaSum -= e.kernel.Dx(a, idxTest, i) * e.alphaBeta.AtVec(1+k)
	}
	return e.alphaBeta.AtVec(0)*xi/float64(n) + betaSum, nil
}

// Grad evaluates the gradient of the unnormalised log density at the bound
// sample idxTest, returning a D-vector.
func (e *Estimator) Grad(idxTest int) ([]float64, error) {
	if err := e.checkEvaluate("Grad", idxTest); err != nil {
		return nil, err
	}
	n, d := e.data.Dims()

	xiGrad := make([]float64, d)
	betaSumGrad := make([]float64, d)
	for k, idx := range e.basis {
		a, i := IdxToAI(idx, d)
		// Sign flip, same reason as in LogPDF.
		floats.Sub(xiGrad, e.kernel.DxIDxIDxJ(a, idxTest, i))
		floats.AddScaled(betaSumGrad, e.alphaBeta.AtVec(1+k), e.kernel.DxIDxJ(a, idxTest, i))
	}

	floats.Scale(e.alphaBeta.AtVec(0)/float64(n), xiGrad)
	floats.Add(xiGrad, betaSumGrad)
	return xiGrad, nil
}

// liftBeta expands the m fitted beta coefficients into the full N*D layout,
// zero everywhere off the basis. The Hessian contractions are written against
// a full coefficient vector; zero-padding lets the identical oracle calls
// serve the sub-sampled fit.
func (e *Estimator) liftBeta() []float64 {
	n, d := e.data.Dims()
	beta := make([]float64, n*d)
	for k, idx := range e.basis {
		beta[idx] = e.alphaBeta.AtVec(1 + k)
	}
	return beta
}

// Hessian evaluates the Hessian of the unnormalised log density at the bound
// sample idxTest, returning a D x D matrix.
func (e *Estimator) Hessian(idxTest int) (*mat.Dense, error) {
	if err := e.checkEvaluate("Hessian", idxTest); err != nil {
		return nil, err
	}
	n, d := e.data.Dims()

	xiHessian := mat.NewDense(d, d, nil)
	betaSumHessian := mat.NewDense(d, d, nil)
	betaFull := e.liftBeta()

	// Iterates over all samples; off-basis contributions vanish through the
	// zero entries of the lifted beta.
	for a := 0; a < n; a++ {
		xiHessian.Add(xiHessian, e.kernel.DxIDxJDxKDxKRowSum(a, idxTest))

		betaA := betaFull[a*d : (a+1)*d]
		// Sign flip: basis point on the left again.
		betaSumHessian.Sub(betaSumHessian, e.kernel.DxIDxJDxKDotVec(a, idxTest, betaA))
	}

	xiHessian.Scale(e.alphaBeta.AtVec(0)/float64(n), xiHessian)
	xiHessian.Add(xiHessian, betaSumHessian)
	return xiHessian, nil
}

// HessianDiag evaluates the diagonal of the Hessian at the bound sample
// idxTest through the per-component oracles, at 1/D^2 the cost of Hessian.
func (e *Estimator) HessianDiag(idxTest int) ([]float64, error) {
	if err := e.checkEvaluate("HessianDiag", idxTest); err != nil {
		return nil, err
	}
	n, d := e.data.Dims()

	xiDiag := make([]float64, d)
	betaSumDiag := make([]float64, d)
	betaFull := e.liftBeta()

	for a := 0; a < n; a++ {
		betaA := betaFull[a*d : (a+1)*d]
		for i := 0; i < d; i++ {
			xiDiag[i] += e.kernel.DxIDxJDxKDxKRowSumComponent(a, idxTest, i, i)
			betaSumDiag[i] -= e.kernel.DxIDxJDxKDotVecComponent(a, idxTest, betaA, i, i)
		}
	}

	floats.Scale(e.alphaBeta.AtVec(0)/float64(n), xiDiag)
	floats.Add(xiDiag, betaSumDiag)
	return xiDiag, nil
}

// Leverage reports per-basis leverage scores for adaptive sub-sampling.
// Not implemented.
func (e *Estimator) Leverage() ([]float64, error) {
	return nil, errors.Wrap(errors.ErrNotImplemented, "Nystrom.Leverage")
}
