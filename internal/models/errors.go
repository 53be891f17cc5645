// Package models holds the campaign, scheme and result types shared across uqpost.
package models

import "errors"

// Error kinds shared by every stage of the post-processing pipeline. Callers
// match them with errors.Is; stages wrap them with the offending input.
var (
	ErrMissingRunOutput    = errors.New("missing run output")
	ErrMalformedOutput     = errors.New("malformed run output")
	ErrInsufficientSamples = errors.New("insufficient samples")
	ErrUnknownQoI          = errors.New("unknown quantity of interest")
	ErrInvalidSampleCount  = errors.New("invalid sample count")
	ErrDegenerateSampleSet = errors.New("degenerate sample set")

	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidPointCount = errors.New("invalid point count")
	ErrInvalidBandwidth  = errors.New("invalid bandwidth")
	ErrResultNotFound    = errors.New("analysis result not found")
	ErrInvalidCampaign   = errors.New("invalid campaign")
)
