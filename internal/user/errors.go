package user

import "errors"

var (
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNotFound       = errors.New("user not found")
	ErrWrongTenant    = errors.New("user does not belong to the specified tenant")
	ErrInvalidRole    = errors.New("invalid role")
)
