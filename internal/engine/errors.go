package engine

import "errors"

// ErrInsufficientData signals that a detector does not yet have enough
// window history to run. It is used only for internal control flow and
// logging context; Detect never returns it to its caller.
var ErrInsufficientData = errors.New("engine: insufficient window data")

// ErrModelFailure signals that a detector's fit step failed (for example,
// a degenerate design matrix). Detectors recover from it locally — a
// failed fit simply withholds that engine's finding for the cycle.
var ErrModelFailure = errors.New("engine: model fit failed")
