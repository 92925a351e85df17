package pricing

import "fmt"

// Failure codes for the pricing taxonomy. Calculators return these inside a
// QuoteResult rather than propagating panics; the HTTP layer maps them to
// status codes.
const (
	CodeConfigNotFound      = "CONFIG_NOT_FOUND"
	CodeUnknownCategory     = "UNKNOWN_CATEGORY"
	CodeServiceAreaExceeded = "SERVICE_AREA_EXCEEDED"
	CodeInvalidBookingFee   = "INVALID_BOOKING_FEE"
	CodeTechnicianNotFound  = "TECHNICIAN_NOT_FOUND"
)

// Error is a tagged pricing failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// UserError reports whether the failure is correctable by the caller (a
// 400-class error) as opposed to a platform setup or invariant problem.
func (e *Error) UserError() bool {
	switch e.Code {
	case CodeUnknownCategory, CodeServiceAreaExceeded, CodeTechnicianNotFound:
		return true
	}
	return false
}
