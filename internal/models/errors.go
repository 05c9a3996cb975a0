package models

import "errors"

// Par-level threshold validation errors.
var (
	ErrNegativeThreshold = errors.New("par and reorder quantities must not be negative")
	ErrReorderAbovePar   = errors.New("reorder quantity must not exceed par quantity")
	ErrParAboveMax       = errors.New("par quantity must not exceed max quantity")
)
