package main

import (
	"errors"
	"fmt"
)

var (
	ErrNoSources         = errors.New("no sources configured")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrDuplicateSource   = errors.New("duplicate source")
	ErrDriftDetected     = errors.New("schema drift detected")

	// ErrNoDatabaseSelected is returned when a MySQL connection has no default database
	// and no schema is configured.
	ErrNoDatabaseSelected = errors.New("no database selected")
)

// SourceError is a fatal failure while talking to one source.
type SourceError struct {
	Source Source
	Op     string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s (%s): %s: %v", e.Source.Key, e.Source.Name, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
