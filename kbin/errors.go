package kbin

import "errors"

// Sentinel errors a Reader accumulates internally; kcodec translates these
// into *kerr.Error with field-path context once it knows which field was
// being read when the failure occurred.
var (
	ErrNotEnoughData = errors.New("kbin: not enough data to read value")
	ErrVarintOverflow = errors.New("kbin: varint is too large")
	ErrTrailingData  = errors.New("kbin: trailing data after expected end of struct")
)
