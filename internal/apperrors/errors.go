package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrServiceNotFound = errors.New("service not found")

	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingAlreadyClaimed = errors.New("booking already claimed")
	ErrInvalidTransition     = errors.New("invalid state transition")

	ErrCleanerNotFound     = errors.New("no cleaner profile")
	ErrBalanceInsufficient = errors.New("insufficient balance")
)
