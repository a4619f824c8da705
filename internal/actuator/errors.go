package actuator

import "codeberg.org/mutker/homedash/internal/errors"

const (
	ErrUnknownAction = errors.ErrorCode("actuator_unknown_action")
	ErrPublishFailed = errors.ErrorCode("actuator_publish_failed")
	ErrNoPublisher   = errors.ErrorCode("actuator_no_publisher")
)
