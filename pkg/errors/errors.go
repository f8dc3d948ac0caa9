// Package errors provides structured error handling and warnings for kexpgo.
//
// Error types carry enough context to diagnose a failed fit or evaluation and
// marshal themselves into zerolog events for structured logging. All
// constructors attach a stack trace via cockroachdb/errors.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("kexpgo-warning: %v\n", w)
	}
	// zerolog warn hook, set lazily to avoid a circular import with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the library-wide warning handler, controlling how
// non-fatal conditions such as spectrum truncation are reported.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings through a zerolog-backed function.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn raises a warning. A configured zerolog hook takes precedence over the
// plain handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// TruncatedSpectrumWarning is raised when the pseudo-inverse solver zeroes
// eigenvalues at or below its tolerance instead of inverting them. This is the
// silent numerical policy for near-singular systems, surfaced as a warning
// rather than an error.
type TruncatedSpectrumWarning struct {
	Op        string
	Dropped   int
	Dimension int
	Tolerance float64
}

func (w *TruncatedSpectrumWarning) Error() string {
	return fmt.Sprintf("%s: truncated %d of %d eigenvalues below tolerance %g",
		w.Op, w.Dropped, w.Dimension, w.Tolerance)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *TruncatedSpectrumWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Int("dropped", w.Dropped).
		Int("dimension", w.Dimension).
		Float64("tolerance", w.Tolerance).
		Str("type", "TruncatedSpectrumWarning")
}

// NewTruncatedSpectrumWarning creates a new TruncatedSpectrumWarning.
func NewTruncatedSpectrumWarning(op string, dropped, dimension int, tolerance float64) *TruncatedSpectrumWarning {
	return &TruncatedSpectrumWarning{Op: op, Dropped: dropped, Dimension: dimension, Tolerance: tolerance}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError is returned when an evaluator is called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("kexpgo: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a new NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when the dimensions reported by a collaborator
// (typically the kernel oracle) disagree with the bound data.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for samples, 1 for coordinates
}

func (e *DimensionError) Error() string {
	axisName := "coordinates"
	if e.Axis == 0 {
		axisName = "samples"
	}
	return fmt.Sprintf("kexpgo: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "coordinates"
	if e.Axis == 0 {
		axisName = "samples"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// InvalidBasisError is returned when a user-supplied RKHS basis is empty,
// contains duplicates, or addresses indices outside [0, N*D).
type InvalidBasisError struct {
	Reason string
	Index  int
}

func (e *InvalidBasisError) Error() string {
	return fmt.Sprintf("kexpgo: invalid RKHS basis: %s (index %d)", e.Reason, e.Index)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InvalidBasisError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("reason", e.Reason).
		Int("index", e.Index).
		Str("type", "InvalidBasisError")
}

// NewInvalidBasisError creates a new InvalidBasisError with a stack trace.
func NewInvalidBasisError(reason string, index int) error {
	err := &InvalidBasisError{Reason: reason, Index: index}
	return errors.WithStack(err)
}

// IndexOutOfRangeError is returned when an evaluator is queried with a sample
// index outside [0, N).
type IndexOutOfRangeError struct {
	Op    string
	Index int
	Bound int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("kexpgo: %s: index %d out of range [0, %d)", e.Op, e.Index, e.Bound)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *IndexOutOfRangeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("index", e.Index).
		Int("bound", e.Bound).
		Str("type", "IndexOutOfRangeError")
}

// NewIndexOutOfRangeError creates a new IndexOutOfRangeError with a stack trace.
func NewIndexOutOfRangeError(op string, index, bound int) error {
	err := &IndexOutOfRangeError{Op: op, Index: index, Bound: bound}
	return errors.WithStack(err)
}

// ValidationError is returned when a constructor parameter fails validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("kexpgo: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is unsuitable for an operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("kexpgo: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// NumericalInstabilityError is returned when a computation produced NaN or Inf.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("kexpgo: numerical instability detected in %s. Values: [%s]", e.Operation, valStr)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError creates a new NumericalInstabilityError with a
// stack trace.
func NewNumericalInstabilityError(operation string, values []float64) error {
	err := &NumericalInstabilityError{Operation: operation, Values: values}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Sentinel errors
//
// ===========================================================================

var (
	// ErrNotImplemented is returned by declared-but-unimplemented operations
	// such as leverage score computation.
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData is returned when an empty data matrix is supplied.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when an eigendecomposition or matrix
	// factorization fails outright.
	ErrSingularMatrix = New("singular matrix")
)
