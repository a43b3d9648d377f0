package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is the normalized failure shape every store and view receives,
// regardless of whether the failure was a server rejection or a transport
// problem. StatusCode 0 means the request never reached the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// connection failures carry no status and a generic message
var errConnection = &Error{Message: "connection error"}

// normalize maps any request failure onto *Error. Server rejections already
// arrive as *Error from the response middleware; everything else is a
// connectivity problem.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return errConnection
}

// IsSessionExpired reports whether err is the distinguished 403 response
// whose error message flags an expired session.
func IsSessionExpired(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusForbidden &&
		strings.Contains(strings.ToLower(apiErr.Message), "expired")
}
