package ports

import "io"

// Transport is the write side of the server connection. Reads go through the
// event loop, never through the session.
type Transport interface {
	io.Writer
	Close() error
}
