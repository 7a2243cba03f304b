package events

import "errors"

var (
	ErrNoBrokers     = errors.New("no kafka brokers configured")
	ErrNoTopic       = errors.New("no kafka topic configured")
	ErrPublishFailed = errors.New("failed to publish prediction event")
)
