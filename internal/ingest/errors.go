package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumns  = errors.New("missing required columns")
	ErrNoUsableRows    = errors.New("no usable rows found")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file has no header row")
)

// MissingColumnsError reports a structural upload error: what was required and
// what the file actually declared.
type MissingColumnsError struct {
	Missing []string
	Found   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s; found: [%s]",
		ErrMissingColumns, strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}
