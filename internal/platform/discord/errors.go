package discord

import "errors"

var (
	ErrMissingToken = errors.New("discord token not configured")
	ErrNotConnected = errors.New("discord session not open")
	ErrEmptyChannel = errors.New("discord channel id is empty")
	ErrMissingAppID = errors.New("discord application id is empty")
)
