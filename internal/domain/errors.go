package domain

import "errors"

var (
	ErrDefaultProfile  = errors.New("cannot delete Default profile")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNoOrders        = errors.New("no orders parsed")
	ErrLockHeld        = errors.New("lock already held")
)
