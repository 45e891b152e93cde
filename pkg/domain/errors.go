package domain

import "errors"

// ErrIncompatibleUnits is returned when a quantity is converted to a unit of a different dimension.
var ErrIncompatibleUnits = errors.New("incompatible units")

// ErrUnknownUnit is returned when a unit name is not registered.
var ErrUnknownUnit = errors.New("unknown unit")

// ErrInvalidScopedKey is returned when a string cannot be parsed as a ScopedKey.
var ErrInvalidScopedKey = errors.New("invalid scoped key")

// ErrInvalidScope is returned when a scope string is not of the form org-campaign-project.
var ErrInvalidScope = errors.New("invalid scope")

// ErrEmptyInput is returned when a descriptor file holds no molecules.
var ErrEmptyInput = errors.New("no molecule descriptors in input")

// ErrNotFound is returned by clients and stores when an object does not exist.
var ErrNotFound = errors.New("not found")
