// Package kexpgo provides kernel exponential family density estimation for Go,
// designed for unnormalised log-density modelling of real-valued vector data.
//
// The estimator learns an unnormalised log-density by score matching in a
// reproducing kernel Hilbert space. The Nystrom variant sub-samples a basis
// from the {samples} x {coordinates} product, fits regularised coefficients
// against a dense normal-equation system and evaluates log-density, gradient
// and Hessian at query points through a kernel derivative oracle.
//
// # Features
//
// - Nystrom sub-sampled RKHS basis with explicit or uniform random selection
// - Self-adjoint pseudo-inverse solver with numpy-compatible truncation
// - Pointwise log-density, gradient, full Hessian and Hessian diagonal
// - CPU-parallel system assembly with automatic chunking
// - Structured error handling and logging throughout
//
// # Quick Start
//
// Here's a minimal fit-and-evaluate example with a Gaussian kernel:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/densitylab/kexpgo/kernel"
//	    "github.com/densitylab/kexpgo/nystrom"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    data := mat.NewDense(5, 2, []float64{
//	        0.1, 0.3,
//	        -0.4, 0.9,
//	        1.2, -0.2,
//	        0.7, 0.5,
//	        -0.9, -1.1,
//	    })
//
//	    oracle, err := kernel.NewGaussian(data, 1.0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    est, err := nystrom.NewRandomBasis(data, oracle, 1.0, 4, nystrom.WithSeed(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := est.Fit(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    lp, err := est.LogPDF(0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("unnormalised log density at sample 0: %.6f\n", lp)
//	}
//
// # Packages
//
// - kernel: derivative oracles (Gaussian kernel included)
// - nystrom: the Nystrom estimator core
// - core/parallel: loop-level parallel helpers
// - pkg/errors: structured error types and numerical guards
// - pkg/log: slog-based structured logging setup
package kexpgo
