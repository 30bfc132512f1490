package model

import "errors"

var (
	// ValidationErr signals a malformed request, the caller can recover by fixing it.
	ValidationErr = errors.New("validation error")
	// SchemaMismatchErr signals that an encoded vector does not fit the model input.
	SchemaMismatchErr = errors.New("schema mismatch")
	// NotFittedErr signals a transform used before it was fitted.
	NotFittedErr = errors.New("not fitted")
	// ModelLoadErr signals a persisted artifact that disagrees with the expected shape.
	ModelLoadErr = errors.New("model load error")
	// InternalErr signals any other failure during inference.
	InternalErr = errors.New("internal error")
)
