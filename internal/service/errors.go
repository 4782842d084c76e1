package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is nil or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnsupportedRosterFormat is returned when an uploaded roster file is
	// neither CSV nor XLSX
	ErrUnsupportedRosterFormat = errors.New("unsupported roster file format")
)
