package polyface

import "errors"

// Construction errors. Operators that return one of these (other than
// ErrPrimitiveMismatch) have emitted nothing.
var (
	ErrNilMesh           = errors.New("nil mesh")
	ErrTooFewPoints      = errors.New("too few points")
	ErrInvalidVector     = errors.New("zero or non-finite vector")
	ErrSingularTransform = errors.New("transform is not invertible")
	ErrPrimitiveMismatch = errors.New("incompatible primitives across contours")
	ErrInvalidGrid       = errors.New("invalid grid dimensions")
	ErrInvalidCount      = errors.New("invalid count")
)
