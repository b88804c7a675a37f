package models

import "errors"

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidCode     = errors.New("invalid or expired code")
	ErrDeliveryFailed  = errors.New("could not deliver verification email")
	ErrBadCredentials  = errors.New("invalid credentials")
	ErrFundsBelowFloor = errors.New("initial funds below minimum investment")
)
