package websocket

import "errors"

// ErrHubFull is returned by Register when the client limit is reached.
var ErrHubFull = errors.New("max websocket clients reached")
