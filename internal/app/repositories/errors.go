package repositories

import (
	"errors"
	"time"
)

var (
	ErrInvalidRecord  = errors.New("invalid history record")
	ErrInvalidRoute   = errors.New("invalid guild route")
	ErrRouteNotFound  = errors.New("guild route not found")
	ErrUnsupportedSQL = errors.New("unsupported sql dialect")
)

var timeNow = func() time.Time { return time.Now().UTC() }
