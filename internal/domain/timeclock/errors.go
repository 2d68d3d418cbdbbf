package timeclock

import "errors"

var (
	ErrWorkerNotFound = errors.New("worker not found")
	ErrInvalidPunch   = errors.New("invalid punch")
)
