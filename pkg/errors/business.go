// Package errors defines the typed business errors shared by the service
// layer and the delivery layers.
package errors

import "errors"

// BusinessError is a rule violation with a stable machine-readable code.
// Code is part of the API contract; Message is for humans and may change.
type BusinessError struct {
	Code    string
	Message string
}

func NewBusinessError(code string, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

func (e *BusinessError) Error() string {
	return e.Message
}

// CodeOf extracts the business code from anywhere in err's chain, or the
// empty string when the chain carries none.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
