package repository

import "errors"

// ErrPassNotFound is returned when the referenced pass does not exist.
var ErrPassNotFound = errors.New("pass not found")

// ErrRegistrationNotFound is returned when the registration does not exist.
var ErrRegistrationNotFound = errors.New("registration not found")

// ErrPoolNotFound is returned when a seat pool key has no counter row.
var ErrPoolNotFound = errors.New("seat pool not found")

// ErrSeatsUnavailable is returned when a reservation would exceed the pool's
// capacity ceiling.
var ErrSeatsUnavailable = errors.New("not enough seats available")

// ErrUpdateRestricted is returned when a write reported zero affected rows
// without an error. This signals a database permission/policy problem, not a
// missing row, and must stay distinguishable from not-found.
var ErrUpdateRestricted = errors.New("database update restricted")

// ErrSettingsNotFound is returned when a named config blob is absent.
var ErrSettingsNotFound = errors.New("settings not found")
