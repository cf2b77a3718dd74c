package nn

import "errors"

// Common errors.
var (
	ErrShapeMismatch     = errors.New("vector size does not match the cell")
	ErrSequenceLength    = errors.New("sequence lengths differ")
	ErrMissingTargets    = errors.New("output cell has no recorded error signal")
	ErrUnexpectedTargets = errors.New("hidden-state cell does not take targets")
	ErrUnexpectedSignal  = errors.New("output cell does not take an upstream error")
	ErrZeroProbability   = errors.New("target has zero predicted probability")
	ErrInvalidTopology   = errors.New("invalid network topology")
	ErrSymbolOutOfRange  = errors.New("symbol id out of vocabulary range")
)
