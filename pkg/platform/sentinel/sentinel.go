package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and provider clients return
// these (optionally wrapped) so services can decide how to degrade.
//
// - ErrNotFound: the requested key has no data (cache miss, unknown place, empty catalog key)
// - ErrUnavailable: an upstream provider or store is temporarily unavailable
// - ErrInvalidState: a component was used before it was ready (e.g. catalog not loaded)
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
