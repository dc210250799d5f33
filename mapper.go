package clamav

import (
	"fmt"
	"net/http"
	"strings"
)

type errorCtor func(msg string, statusCode int, cause error) *Error

func timeoutCtor(msg string, _ int, cause error) *Error {
	return NewTimeoutError(msg, cause)
}

// httpStatusTable maps non-200 REST status codes to error constructors.
var httpStatusTable = map[int]errorCtor{
	http.StatusBadRequest:            NewBadRequestError,
	http.StatusRequestEntityTooLarge: NewFileTooLargeError,
	499:                              timeoutCtor, // client closed request
	http.StatusBadGateway:            NewServiceUnavailableError,
	http.StatusServiceUnavailable:    NewServiceUnavailableError,
	http.StatusGatewayTimeout:        timeoutCtor,
}

// MapHTTPStatus classifies a non-200 REST response. Unmapped codes become
// service errors carrying the raw status.
func MapHTTPStatus(statusCode int, msg string) error {
	if ctor, ok := httpStatusTable[statusCode]; ok {
		return ctor(msg, statusCode, nil)
	}
	return NewServiceError(fmt.Sprintf("unexpected status %d: %s", statusCode, msg), statusCode, nil)
}

type messageRule struct {
	substrings []string
	ctor       errorCtor
}

// scanErrorRules classify "ERROR" scan results by message, in order.
var scanErrorRules = []messageRule{
	{substrings: []string{"too large", "exceeds", "size limit"}, ctor: NewFileTooLargeError},
	{substrings: []string{"clamd", "unavailable", "not running"}, ctor: NewServiceUnavailableError},
}

// MatchesFileTooLarge reports whether a server message describes a size limit violation.
func MatchesFileTooLarge(msg string) bool {
	return scanErrorRules[0].match(msg)
}

func (r messageRule) match(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range r.substrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// MapScanResult classifies a terminal scan response. Clean and infected
// results pass through; an "ERROR" result becomes a typed error when its
// message matches a known failure and otherwise passes through as a result
// with VerdictError. Unknown statuses are service errors.
func MapScanResult(r *ScanResult) (*ScanResult, error) {
	if r == nil {
		return nil, NewServiceError("empty scan response", 0, nil)
	}
	switch r.Status {
	case StatusClean, StatusInfected:
		return r, nil
	case StatusError:
		for _, rule := range scanErrorRules {
			if rule.match(r.Message) {
				return nil, rule.ctor(r.Message, 0, nil)
			}
		}
		return r, nil
	default:
		return nil, NewServiceError(fmt.Sprintf("unknown scan status %q: %s", r.Status, r.Message), 0, nil)
	}
}
