package domain

import "errors"

var ErrInvalidQuote = errors.New("invalid quote")
