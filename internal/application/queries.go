package application

import "net"

// Target is a fully resolved connection request.
type Target struct {
	Username string
	Host     string
	Port     string
}

func (t Target) Address() string {
	return net.JoinHostPort(t.Host, t.Port)
}
