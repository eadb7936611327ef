package auth

import "errors"

var (
	NoProfileErr = errors.New("session has no profile")
)
