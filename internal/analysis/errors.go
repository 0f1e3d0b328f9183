package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// NotFoundError indicates the source path does not resolve to a readable file.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data file not found: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("data file not found: %s", e.Path)
}

// Unwrap lets errors.Is(err, fs.ErrNotExist) match.
func (e *NotFoundError) Unwrap() error {
	if e.Err == nil {
		return fs.ErrNotExist
	}
	return e.Err
}

// SchemaError reports a structural violation of the whole dataset: either
// required columns are absent or there are no records.
type SchemaError struct {
	Missing []Field
	Empty   bool
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, f := range e.Missing {
			names[i] = string(f)
		}
		return fmt.Sprintf("missing required columns: %s", strings.Join(names, ", "))
	}
	if e.Empty {
		return "data file is empty"
	}
	return "invalid schema"
}

// UnknownViewError is returned when an aggregation is requested for an
// undefined view name.
type UnknownViewError struct {
	Name string
}

func (e *UnknownViewError) Error() string {
	known := make([]string, len(ViewNames))
	for i, n := range ViewNames {
		known[i] = string(n)
	}
	return fmt.Sprintf("unknown view %q (use one of: %s)", e.Name, strings.Join(known, ", "))
}

// ErrNotNumeric indicates a numeric operation was requested on a text or
// temporal field.
var ErrNotNumeric = errors.New("field is not numeric")
