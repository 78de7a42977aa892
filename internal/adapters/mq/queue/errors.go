package queue

import "errors"

// ErrClosed reports operations on a closed queue.
var ErrClosed = errors.New("queue closed")
