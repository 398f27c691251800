package protocol

import (
	"fmt"
	"strings"

	"github.com/bnema/me2u/internal/domain"
)

// WindowCloseToken is sent by a conversation window that is going away.
const WindowCloseToken = "XTERM_EXIT"

type WindowEventKind int

const (
	WindowSend WindowEventKind = iota
	WindowClose
)

// WindowEvent is one frame read from a conversation window. For WindowSend,
// Message is the SendMessage the window wants delivered.
type WindowEvent struct {
	Kind    WindowEventKind
	Peer    string
	Message domain.Message
}

func DecodeWindow(raw []byte) (WindowEvent, error) {
	token, rest, _ := strings.Cut(string(raw), " ")

	switch token {
	case WindowCloseToken:
		if err := checkPeer(rest); err != nil {
			return WindowEvent{}, malformed(token, err.Error())
		}
		return WindowEvent{Kind: WindowClose, Peer: rest}, nil
	case Token(domain.VerbSendMessage):
		msg, err := Decode(raw)
		if err != nil {
			return WindowEvent{}, err
		}
		return WindowEvent{Kind: WindowSend, Peer: msg.Peer, Message: msg}, nil
	default:
		return WindowEvent{}, fmt.Errorf("%w: window sent %q", domain.ErrUnknownVerb, token)
	}
}

func EncodeWindowClose(peer string) ([]byte, error) {
	if err := checkPeer(peer); err != nil {
		return nil, malformed(WindowCloseToken, err.Error())
	}

	return []byte(WindowCloseToken + " " + peer + Terminator), nil
}
