package telemetry

import "codeberg.org/mutker/homedash/internal/errors"

const (
	// Envelope Errors
	ErrDecodeFailed  = errors.ErrorCode("telemetry_decode_failed")
	ErrEmptyPayload  = errors.ErrorCode("telemetry_empty_payload")
	ErrUnknownMetric = errors.ErrorCode("telemetry_unknown_metric")
)
