package domain

import "slices"

type Verb int

const (
	VerbConnect Verb = iota
	VerbConnectAck
	VerbRegisterUsername
	VerbUsernameTaken
	VerbUsernameOk
	VerbDailyMessage
	VerbListUsers
	VerbListUsersResponse
	VerbSendMessage
	VerbSendAck
	VerbSendRecipientMissing
	VerbReceiveMessage
	VerbReceiveAck
	VerbLogout
	VerbLogoutAck
	VerbUserLoggedOff
	VerbHelp
	VerbInvalidInput
)

// Verbs lists every verb in declaration order.
func Verbs() []Verb {
	verbs := make([]Verb, 0, int(VerbInvalidInput)+1)
	for v := VerbConnect; v <= VerbInvalidInput; v++ {
		verbs = append(verbs, v)
	}
	return verbs
}

func (v Verb) String() string {
	switch v {
	case VerbConnect:
		return "Connect"
	case VerbConnectAck:
		return "ConnectAck"
	case VerbRegisterUsername:
		return "RegisterUsername"
	case VerbUsernameTaken:
		return "UsernameTaken"
	case VerbUsernameOk:
		return "UsernameOk"
	case VerbDailyMessage:
		return "DailyMessage"
	case VerbListUsers:
		return "ListUsers"
	case VerbListUsersResponse:
		return "ListUsersResponse"
	case VerbSendMessage:
		return "SendMessage"
	case VerbSendAck:
		return "SendAck"
	case VerbSendRecipientMissing:
		return "SendRecipientMissing"
	case VerbReceiveMessage:
		return "ReceiveMessage"
	case VerbReceiveAck:
		return "ReceiveAck"
	case VerbLogout:
		return "Logout"
	case VerbLogoutAck:
		return "LogoutAck"
	case VerbUserLoggedOff:
		return "UserLoggedOff"
	case VerbHelp:
		return "Help"
	case VerbInvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// Shape describes which fields a verb carries. A verb always carries exactly
// the fields of its shape.
type Shape int

const (
	ShapeNone Shape = iota
	ShapePeer
	ShapeBody
	ShapePeerBody
	ShapeUsers
)

func (v Verb) Shape() Shape {
	switch v {
	case VerbRegisterUsername, VerbSendAck, VerbSendRecipientMissing, VerbReceiveAck, VerbUserLoggedOff:
		return ShapePeer
	case VerbDailyMessage, VerbInvalidInput:
		return ShapeBody
	case VerbSendMessage, VerbReceiveMessage:
		return ShapePeerBody
	case VerbListUsersResponse:
		return ShapeUsers
	default:
		return ShapeNone
	}
}

// Local verbs never cross the wire.
func (v Verb) Local() bool {
	return v == VerbHelp || v == VerbInvalidInput
}

// ClientOriginated reports whether the client may put the verb on the wire.
func (v Verb) ClientOriginated() bool {
	switch v {
	case VerbConnect, VerbRegisterUsername, VerbListUsers, VerbSendMessage, VerbReceiveAck, VerbLogout:
		return true
	default:
		return false
	}
}

type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// Message is one decoded frame or locally originated command. Raw holds the
// frame exactly as received, without terminator, so it can be handed to a
// conversation window verbatim.
type Message struct {
	Verb      Verb
	Peer      string
	Body      string
	Users     []string
	Raw       []byte
	Direction Direction
}

// Equal compares the decoded fields and ignores Raw.
func (m Message) Equal(other Message) bool {
	return m.Verb == other.Verb &&
		m.Peer == other.Peer &&
		m.Body == other.Body &&
		m.Direction == other.Direction &&
		slices.Equal(m.Users, other.Users)
}
