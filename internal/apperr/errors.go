package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrOutsideRoot = errors.New("path escapes media root")
	ErrMediaRoot   = errors.New("refusing to modify the media root itself")
	ErrNoFile      = errors.New("missing 'file' field in multipart form")
)
