package core

import (
	"context"
	"math"
)

// LogPDF is the capability every sampling target must provide: an
// unnormalized log-probability density over a fixed-dimension parameter
// space. Implementations must be safe for concurrent calls to Evaluate,
// since the evaluation dispatcher may fan proposals out across workers.
//
// A non-nil error signals an invalid evaluation (simulation failure,
// out-of-domain input). Returning NaN or +Inf is treated the same way;
// -Inf is a legitimate log-density meaning "probability zero here".
type LogPDF interface {
	// Dim reports the number of parameters the density is defined over.
	Dim() int
	// Evaluate returns the log-density at x, where len(x) == Dim().
	Evaluate(ctx context.Context, x []float64) (float64, error)
}

// GradientLogPDF is an optional extension for targets that can also
// produce the gradient of the log-density. Samplers that need gradients
// type-assert for it; nothing in the controller requires it.
type GradientLogPDF interface {
	LogPDF
	EvaluateWithGradient(ctx context.Context, x []float64) (float64, []float64, error)
}

// Evaluation is the result of evaluating a LogPDF at one point. OK is false
// when the evaluation failed; an invalid evaluation always carries -Inf so
// accidental use in an acceptance ratio still rejects.
type Evaluation struct {
	LogDensity float64
	OK         bool
}

// ValidEvaluation wraps a raw log-density, normalizing NaN and +Inf to the
// invalid marker so they can never leak into downstream statistics.
func ValidEvaluation(logDensity float64) Evaluation {
	if math.IsNaN(logDensity) || math.IsInf(logDensity, 1) {
		return InvalidEvaluation()
	}
	return Evaluation{LogDensity: logDensity, OK: true}
}

// InvalidEvaluation is the explicit failure marker.
func InvalidEvaluation() Evaluation {
	return Evaluation{LogDensity: math.Inf(-1), OK: false}
}

// Finite reports whether the evaluation succeeded with a finite log-density.
func (e Evaluation) Finite() bool {
	return e.OK && !math.IsInf(e.LogDensity, 0)
}

// LogPDFFunc adapts a plain function to the LogPDF interface.
type LogPDFFunc struct {
	D int
	F func(x []float64) float64
}

func (f LogPDFFunc) Dim() int { return f.D }

func (f LogPDFFunc) Evaluate(_ context.Context, x []float64) (float64, error) {
	return f.F(x), nil
}
