// Package tcp connects to a chat server.
package tcp

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/bnema/me2u/internal/domain"
)

// Dial connects to host:port and returns the connection as a file so the
// event loop can poll its descriptor directly.
func Dial(ctx context.Context, host, port string, timeout time.Duration) (*os.File, error) {
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", domain.ErrTransport, net.JoinHostPort(host, port), err)
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: unexpected connection type %T", domain.ErrTransport, conn)
	}

	// File dups the descriptor; the net.Conn copy is no longer needed.
	file, err := tcpConn.File()
	closeErr := tcpConn.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: detach socket: %w", domain.ErrTransport, err)
	}
	if closeErr != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: release socket: %w", domain.ErrTransport, closeErr)
	}

	return file, nil
}
