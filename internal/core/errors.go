package core

import "errors"

var (
	// ErrModelUnavailable means no classifier could be loaded. Analysis
	// fails fast with this error; it is never converted into a neutral
	// trust score.
	ErrModelUnavailable = errors.New("no classifier available")

	// ErrShapeMismatch means a persisted model was trained against a
	// different feature-vector shape than FeatureDim.
	ErrShapeMismatch = errors.New("classifier feature shape mismatch")
)
