// Package model provides the estimator lifecycle primitives shared by all
// kexpgo estimators.
package model

// EstimatorState represents the training state of an estimator.
type EstimatorState int

const (
	// NotFitted marks an estimator whose Fit has not completed.
	NotFitted EstimatorState = iota
	// Fitted marks an estimator with valid coefficients.
	Fitted
)

// BaseEstimator is the embedded base of every estimator. The fitted flag
// guards evaluators: coefficients exist only after a successful fit.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to its initial, unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
