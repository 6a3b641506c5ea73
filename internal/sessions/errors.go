package sessions

import "errors"

var ErrEmptySessionID = errors.New("session id cannot be empty")
