package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrElementNotFound is returned when a page element did not appear
	// within the bounded wait of a browser primitive.
	ErrElementNotFound = errors.New("element not found")
	// ErrNavigationTimeout is returned when the page did not settle within
	// the navigation timeout after an action.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrBotDetected is returned when the detection probe found an
	// anti-automation challenge on the current page.
	ErrBotDetected = errors.New("bot detection triggered")
)
