package service

import "errors"

var (
	// ErrServiceTypeNotFound is returned when the required service type
	// reference is missing. Missing data for individual candidates never
	// produces this; those candidates are simply excluded.
	ErrServiceTypeNotFound = errors.New("service type not found")

	// ErrDuplicateEvent signals that a materialized event already exists
	// for a recurring entity at a given due instant. Not a failure: the
	// scheduler counts it and moves on.
	ErrDuplicateEvent = errors.New("event already materialized")
)
