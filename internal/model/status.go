package model

import "strconv"

// Status is the recorded outcome of fetching a single page.
// It is either an HTTP status code or StatusUnknown for requests
// that failed below the HTTP layer (DNS, connection refused, timeout).
type Status int

// StatusUnknown marks a fetch that never produced an HTTP response.
//
// Design decision: We use zero as the sentinel rather than a negative
// value because:
//  1. No HTTP status code is zero, so there is no ambiguity
//  2. The zero value of Status is then "not fetched / failed", which
//     is the safest default for an uninitialized record
//  3. It sorts before all real codes, so failed requests lead the
//     status summary table
const StatusUnknown Status = 0

// IsError reports whether the status belongs in the error section of
// the report. HTTP codes >= 400 and StatusUnknown are errors; 1xx,
// 2xx, and 3xx are not.
func (s Status) IsError() bool {
	return s == StatusUnknown || s >= 400
}

// String returns the displayable form of the status: the integer code,
// or "Unknown" for transport-level failures.
func (s Status) String() string {
	if s == StatusUnknown {
		return "Unknown"
	}
	return strconv.Itoa(int(s))
}

// Description returns a short human-readable label for the status
// summary table.
func (s Status) Description() string {
	switch {
	case s == StatusUnknown:
		return "FAILED"
	case s == 200:
		return "OK"
	case s >= 400:
		return "ERROR"
	default:
		return "OTHER"
	}
}
