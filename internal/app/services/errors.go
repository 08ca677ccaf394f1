package services

import "errors"

var (
	ErrMissingTarget  = errors.New("moderation entry has no target user")
	ErrDeliveryFailed = errors.New("notification delivery failed")
)
