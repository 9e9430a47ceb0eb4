package model

import "errors"

// ErrInvalidInstance is returned (wrapped) when an Instance violates one of
// its field invariants.
var ErrInvalidInstance = errors.New("invalid instance")
