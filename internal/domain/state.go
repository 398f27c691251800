package domain

type ConnectionState int

const (
	StateConnecting ConnectionState = iota
	StateConnected
	StateRegisteringUsername
	StateLoggedInAwaitingMotd
	StateLoggedIn
	StateQuitting
	StateTerminate
)

func States() []ConnectionState {
	return []ConnectionState{
		StateConnecting,
		StateConnected,
		StateRegisteringUsername,
		StateLoggedInAwaitingMotd,
		StateLoggedIn,
		StateQuitting,
		StateTerminate,
	}
}

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateRegisteringUsername:
		return "registering username"
	case StateLoggedInAwaitingMotd:
		return "logged in, awaiting motd"
	case StateLoggedIn:
		return "logged in"
	case StateQuitting:
		return "quitting"
	case StateTerminate:
		return "terminated"
	default:
		return "unknown"
	}
}

// Before reports whether s precedes next. States only ever move forward.
func (s ConnectionState) Before(next ConnectionState) bool {
	return s < next
}
