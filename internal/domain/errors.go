package domain

import "errors"

// ErrNotFound is returned when a requested resource (e.g. an export format or
// a dataset in the Postgres backend) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when caller input fails validation
// (unknown month or day name, negative cursor, unsupported format).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnknownCity is returned when a city selector is outside the fixed set.
var ErrUnknownCity = errors.New("unknown city")

// ErrMalformedSource is returned when a trip log is missing a required column
// or a row carries an unparseable Start Time or Trip Duration. The whole load
// fails; no partial RecordSet is ever returned alongside it.
var ErrMalformedSource = errors.New("malformed source")

// ErrEmptyDataset is returned by mode-based aggregations (temporal, station)
// on a view with no records, where the mode is undefined.
var ErrEmptyDataset = errors.New("empty dataset")
