package payroll

import "errors"

var (
	ErrPeriodNotFound = errors.New("pay period not found")
	ErrPeriodClosed   = errors.New("pay period is closed")
	ErrMissingRubric  = errors.New("required payroll rubric missing from catalog")
	ErrInvalidRubric  = errors.New("payroll rubric has the wrong kind")
)
