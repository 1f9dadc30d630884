package domain

import "errors"

var (
	ErrInvalidEventKind  = errors.New("invalid clock event kind")
	ErrIllegalTransition = errors.New("illegal clock transition")
	ErrPartialWrite      = errors.New("clock event recorded but annex write failed")
	ErrClockBusy         = errors.New("another clock action is in progress")

	ErrQuestionNotFound = errors.New("question not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrQuoteNotFound    = errors.New("quote not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
)
