// This file defines the standard attribute keys used across kexpgo logging.
//
// Keys follow a hierarchical naming convention (e.g. "data.samples",
// "fit.lambda") so logs can be filtered by concern.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "Nystrom".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "log_pdf", "grad", "hessian", "hessian_diag".
	OperationKey = "ml.operation"

	// PhaseKey indicates the phase within an operation.
	// Examples: "compute_h", "compute_xi_norm", "build_system", "solve".
	PhaseKey = "ml.phase"
)

// Data shape and fit parameters.
const (
	// SamplesKey is the number of samples N in the bound dataset.
	SamplesKey = "data.samples"

	// DimsKey is the coordinate count D of the bound dataset.
	DimsKey = "data.dims"

	// BasisSizeKey is the number m of sub-sampled RKHS basis functions.
	BasisSizeKey = "fit.basis_size"

	// LambdaKey is the regularisation strength used for the fit.
	LambdaKey = "fit.lambda"

	// SeedKey is the RNG seed used for random basis selection.
	SeedKey = "fit.seed"
)

// Performance metrics.
const (
	// DurationMsKey is the wall-clock duration of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
