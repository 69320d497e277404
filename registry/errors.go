package registry

import "errors"

// ErrUnknownStep is returned when a step name is not part of the chain.
// Callers detect it with errors.Is.
var ErrUnknownStep = errors.New("registry: unknown step")
