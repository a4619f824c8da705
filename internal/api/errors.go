package api

import "codeberg.org/mutker/homedash/internal/errors"

const (
	ErrUpgradeFailed = errors.ErrorCode("api_upgrade_failed")
	ErrEncodeFailed  = errors.ErrorCode("api_encode_failed")
	ErrInvalidLimit  = errors.ErrorCode("api_invalid_limit")
)
