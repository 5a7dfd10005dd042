package application

import "errors"

var ErrLocked = errors.New("sync already in progress")
