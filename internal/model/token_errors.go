package model

import "errors"

var (
	ErrTokenNotFound        = errors.New("confirmation token not found")
	ErrTokenExpired         = errors.New("confirmation token expired")
	ErrTokenAlreadyConsumed = errors.New("confirmation token already consumed")
)
