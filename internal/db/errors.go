package db

import "errors"

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrAmbiguousID         = errors.New("task id prefix matches more than one task")
	ErrForbidden           = errors.New("task belongs to another user")
	ErrNoSession           = errors.New("no active session")
	ErrPastDueDate         = errors.New("due date is in the past")
	ErrInvalidSubtaskCount = errors.New("subtask count must not be negative")
	ErrInvalidTagColor     = errors.New("tag color must be a #RRGGBB hex string")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)
