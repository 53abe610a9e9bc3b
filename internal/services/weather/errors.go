package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a city or an address could not be resolved.
	ErrNotFound = errors.New("not found")
	// ErrUpstream covers transport failures, non-2xx statuses and malformed bodies.
	ErrUpstream = errors.New("upstream error")

	ErrEmptyCity = fmt.Errorf("%w: city name is required", ErrNotFound)
)
