package balance

import "errors"

// ErrNoSchedule marks a day without any schedule assignment. Such a day has
// no balance at all; it is not a zero balance.
var ErrNoSchedule = errors.New("no schedule for day")

var ErrInvalidRange = errors.New("invalid balance range")

var ErrWorkerNotFound = errors.New("worker not found")
