package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
	ErrIncomplete       = errors.New("configuration incomplete")
	ErrDuplicate        = errors.New("duplicate record")
	ErrGroupUnavailable = errors.New("product group unavailable for base")
	ErrBaseUnavailable  = errors.New("base has no product slots")
	ErrStorage          = errors.New("storage failure")
	ErrRender           = errors.New("render failure")
)
