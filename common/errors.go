package common

import (
	"errors"
)

var ErrNotFound = errors.New("record not found")
var ErrUnauthorized = errors.New("not permitted for this account")
var ErrInvalidState = errors.New("offer is not awaiting a response")
var ErrUrlTooLarge = errors.New("url exceeds inline payload limit")
var ErrMalformed = errors.New("document failed to parse")
