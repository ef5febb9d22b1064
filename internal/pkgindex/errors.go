package pkgindex

import (
	"fmt"
	"net/http"
)

// IndexError reports a non-OK response from the package index.
type IndexError struct {
	URL    string
	Status int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("package index returned %d for %s", e.Status, e.URL)
}

// NotFound reports whether the error is an index 404 (unknown package).
func (e *IndexError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// StandardLibraryError is returned when a requested package is itself part
// of the MicroPython standard library and needs no local install.
type StandardLibraryError struct {
	Package string
}

func (e *StandardLibraryError) Error() string {
	return fmt.Sprintf("'%s' is in the MicroPython standard library", e.Package)
}
