package errors

import "errors"

var (
	ErrInvalidPrincipal = errors.New("principal is required")
	ErrNotAdmin         = errors.New("caller is not the registry admin")
	ErrUnitNotFound     = errors.New("governance unit not found")
	ErrNotUnitOwner     = errors.New("caller does not own unit")
	ErrConflict         = errors.New("registry conflict")
)
