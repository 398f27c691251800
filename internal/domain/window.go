package domain

import "os"

// ConversationWindow is the parent's side of one peer conversation process:
// Inbound carries frames from the process, Outbound carries frames to it.
type ConversationWindow struct {
	Peer     string
	Inbound  *os.File
	Outbound *os.File
	PID      int
}
