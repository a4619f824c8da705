package bus

import "codeberg.org/mutker/homedash/internal/errors"

const (
	ErrConnectFailed   = errors.ErrorCode("bus_connect_failed")
	ErrNotConnected    = errors.ErrorCode("bus_not_connected")
	ErrSubscribeFailed = errors.ErrorCode("bus_subscribe_failed")
	ErrPublishFailed   = errors.ErrorCode("bus_publish_failed")
	ErrTimeout         = errors.ErrorCode("bus_timeout")
	ErrInvalidConfig   = errors.ErrorCode("bus_invalid_config")
)
