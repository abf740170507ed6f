package jps

import "errors"

var (
	// ErrCancelled is returned when a search is stopped by its context or its
	// time budget before reaching a verdict.
	ErrCancelled = errors.New("jps: search cancelled")
	ErrNoOracle  = errors.New("jps: config has no oracle")
)
