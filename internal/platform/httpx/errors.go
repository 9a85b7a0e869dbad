// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Mapping binds a domain error to an HTTP status and problem title.
type Mapping struct {
	Err    error
	Status int
	Title  string
}

// RespondError writes the first matching mapping as an RFC 7807 problem.
// Unmatched errors become a 500 without leaking the error text.
func RespondError(w http.ResponseWriter, err error, mappings ...Mapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			Problem(w, m.Status, m.Title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
