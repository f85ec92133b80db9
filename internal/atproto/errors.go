package atproto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// XRPCError is a non-2xx XRPC response.
type XRPCError struct {
	Status  int    `json:"-"`
	Name    string `json:"error"`
	Message string `json:"message"`
}

func (e *XRPCError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("xrpc %d %s: %s", e.Status, e.Name, e.Message)
	}
	return fmt.Sprintf("xrpc %d %s", e.Status, e.Name)
}

func newXRPCError(status int, body []byte) *XRPCError {
	e := &XRPCError{Status: status}
	if err := json.Unmarshal(body, e); err != nil || e.Name == "" {
		e.Name = http.StatusText(status)
	}
	return e
}

// IsNotFound reports whether err says the repository or record is missing.
func IsNotFound(err error) bool {
	var xe *XRPCError
	if !errors.As(err, &xe) {
		return false
	}
	switch xe.Name {
	case "RepoNotFound", "RecordNotFound", "NotFound":
		return true
	}
	if xe.Status == http.StatusNotFound {
		return true
	}
	return xe.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(xe.Message), "could not find")
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var xe *XRPCError
	if !errors.As(err, &xe) {
		return false
	}
	switch xe.Name {
	case "AuthRequired", "AuthenticationRequired", "ExpiredToken", "InvalidToken", "AuthMissing":
		return true
	}
	return xe.Status == http.StatusUnauthorized
}
