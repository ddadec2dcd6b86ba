package stream

import "errors"

// ErrClientGone is returned when sending to a client that has disconnected.
var ErrClientGone = errors.New("stream client gone")
