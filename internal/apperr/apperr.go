// Package apperr defines the ledger's stable numeric error codes. Codes are
// part of the API contract and never renumbered.
package apperr

import "errors"

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNotAuthorized            = &Error{Code: 100, Message: "not authorized"}
	ErrInvalidMetricKind        = &Error{Code: 101, Message: "invalid metric kind"}
	ErrInvalidValue             = &Error{Code: 102, Message: "invalid value"}
	ErrGoalNotFound             = &Error{Code: 103, Message: "goal not found"}
	ErrMetricValueTooHigh       = &Error{Code: 104, Message: "metric value too high"}
	ErrUserNotFound             = &Error{Code: 105, Message: "user not found"}
	ErrAchievementAlreadyEarned = &Error{Code: 106, Message: "achievement already earned"}
	ErrCannotOverwrite          = &Error{Code: 107, Message: "cannot overwrite previous entry"}
)

// As unwraps err into an *Error when one is in the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
