package analyzer

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidURL reports a target that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrFetchStatus is matched by every *FetchError.
	ErrFetchStatus = errors.New("unexpected response status")
	// ErrCompareCount reports a comparison outside MinCompare..MaxCompare pages.
	ErrCompareCount = errors.New("compare needs between 2 and 5 urls")
)

// FetchError is returned when the target answered with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *FetchError) Unwrap() error { return ErrFetchStatus }
