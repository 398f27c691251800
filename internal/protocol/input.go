package protocol

import (
	"strings"

	"github.com/bnema/me2u/internal/domain"
)

const (
	CommandHelp   = "/help"
	CommandLogout = "/logout"
	CommandListU  = "/listu"
	CommandChat   = "/chat"
)

const HelpText = "/help\n/logout\n/listu\n/chat <to> <msg>"

// ParseUserInput turns one line typed at the main terminal into a message.
// Lines that are not a well-formed command become InvalidInput with the
// reason in Body.
func ParseUserInput(line string) domain.Message {
	line = strings.TrimRight(line, "\r\n")
	command, rest, _ := strings.Cut(line, " ")

	switch command {
	case CommandHelp:
		return domain.Message{Verb: domain.VerbHelp, Direction: domain.Outgoing}
	case CommandLogout:
		return domain.Message{Verb: domain.VerbLogout, Direction: domain.Outgoing}
	case CommandListU:
		return domain.Message{Verb: domain.VerbListUsers, Direction: domain.Outgoing}
	case CommandChat:
		peer, body, ok := strings.Cut(rest, " ")
		if !ok || peer == "" || body == "" {
			return invalidInput("usage: /chat <to> <msg>")
		}
		if err := checkPeer(peer); err != nil {
			return invalidInput(err.Error())
		}
		return domain.Message{
			Verb:      domain.VerbSendMessage,
			Peer:      peer,
			Body:      body,
			Direction: domain.Outgoing,
		}
	default:
		return invalidInput("Invalid user input")
	}
}

func invalidInput(reason string) domain.Message {
	return domain.Message{Verb: domain.VerbInvalidInput, Body: reason, Direction: domain.Outgoing}
}
