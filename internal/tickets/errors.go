package tickets

import "errors"

var ErrNotFound = errors.New("ticket not found")
