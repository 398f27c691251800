// Package protocol encodes and decodes ME2U frames.
package protocol

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bnema/me2u/internal/domain"
)

// Terminator ends every frame on the socket and on window pipes.
const Terminator = "\r\n\r\n"

type verbEntry struct {
	token     string
	verb      domain.Verb
	direction domain.Direction
}

var verbTable = []verbEntry{
	{token: "ME2U", verb: domain.VerbConnect, direction: domain.Outgoing},
	{token: "U2EM", verb: domain.VerbConnectAck, direction: domain.Incoming},
	{token: "IAM", verb: domain.VerbRegisterUsername, direction: domain.Outgoing},
	{token: "ETAKEN", verb: domain.VerbUsernameTaken, direction: domain.Incoming},
	{token: "MAI", verb: domain.VerbUsernameOk, direction: domain.Incoming},
	{token: "MOTD", verb: domain.VerbDailyMessage, direction: domain.Incoming},
	{token: "LISTU", verb: domain.VerbListUsers, direction: domain.Outgoing},
	{token: "UTSIL", verb: domain.VerbListUsersResponse, direction: domain.Incoming},
	{token: "TO", verb: domain.VerbSendMessage, direction: domain.Outgoing},
	{token: "OT", verb: domain.VerbSendAck, direction: domain.Incoming},
	{token: "EDNE", verb: domain.VerbSendRecipientMissing, direction: domain.Incoming},
	{token: "FROM", verb: domain.VerbReceiveMessage, direction: domain.Incoming},
	{token: "MORF", verb: domain.VerbReceiveAck, direction: domain.Outgoing},
	{token: "BYE", verb: domain.VerbLogout, direction: domain.Outgoing},
	{token: "EYB", verb: domain.VerbLogoutAck, direction: domain.Incoming},
	{token: "UOFF", verb: domain.VerbUserLoggedOff, direction: domain.Incoming},
}

var (
	byToken = map[string]verbEntry{}
	byVerb  = map[domain.Verb]verbEntry{}
)

func init() {
	for _, entry := range verbTable {
		byToken[entry.token] = entry
		byVerb[entry.verb] = entry
	}
}

// Token returns the wire token of a verb, or "" for local verbs.
func Token(verb domain.Verb) string {
	return byVerb[verb].token
}

// Decode parses one frame with its terminator already stripped.
func Decode(raw []byte) (domain.Message, error) {
	frame := string(raw)
	token, rest, hasRest := strings.Cut(frame, " ")

	entry, ok := byToken[token]
	if !ok {
		return domain.Message{}, fmt.Errorf("%w: %q", domain.ErrUnknownVerb, token)
	}

	msg := domain.Message{
		Verb:      entry.verb,
		Raw:       bytes.Clone(raw),
		Direction: entry.direction,
	}

	switch entry.verb.Shape() {
	case domain.ShapeNone:
		if hasRest {
			return domain.Message{}, malformed(token, "unexpected fields")
		}
	case domain.ShapePeer:
		if !hasRest {
			return domain.Message{}, malformed(token, "missing username")
		}
		if err := checkPeer(rest); err != nil {
			return domain.Message{}, malformed(token, err.Error())
		}
		msg.Peer = rest
	case domain.ShapeBody:
		if !hasRest {
			return domain.Message{}, malformed(token, "missing body")
		}
		msg.Body = rest
	case domain.ShapePeerBody:
		peer, body, ok := strings.Cut(rest, " ")
		if !hasRest || !ok {
			return domain.Message{}, malformed(token, "expected username and body")
		}
		if err := checkPeer(peer); err != nil {
			return domain.Message{}, malformed(token, err.Error())
		}
		msg.Peer = peer
		msg.Body = body
	case domain.ShapeUsers:
		if !hasRest {
			return domain.Message{}, malformed(token, "missing user list")
		}
		msg.Users = strings.Fields(rest)
	}

	return msg, nil
}

// Format renders a client-originated message without the terminator.
func Format(msg domain.Message) ([]byte, error) {
	entry, ok := byVerb[msg.Verb]
	if !ok || !msg.Verb.ClientOriginated() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidForEncoding, msg.Verb)
	}

	var b strings.Builder
	b.WriteString(entry.token)

	switch msg.Verb.Shape() {
	case domain.ShapePeer:
		if err := checkPeer(msg.Peer); err != nil {
			return nil, malformed(entry.token, err.Error())
		}
		b.WriteByte(' ')
		b.WriteString(msg.Peer)
	case domain.ShapePeerBody:
		if err := checkPeer(msg.Peer); err != nil {
			return nil, malformed(entry.token, err.Error())
		}
		if strings.Contains(msg.Body, Terminator) {
			return nil, malformed(entry.token, "body contains the frame terminator")
		}
		b.WriteByte(' ')
		b.WriteString(msg.Peer)
		b.WriteByte(' ')
		b.WriteString(msg.Body)
	}

	return []byte(b.String()), nil
}

// Encode renders a client-originated message as a complete frame.
func Encode(msg domain.Message) ([]byte, error) {
	formatted, err := Format(msg)
	if err != nil {
		return nil, err
	}

	return append(formatted, Terminator...), nil
}

func checkPeer(peer string) error {
	if peer == "" {
		return fmt.Errorf("empty username")
	}
	if strings.Contains(peer, " ") {
		return fmt.Errorf("username %q contains a space", peer)
	}
	if len(peer) > domain.MaxUsernameLength {
		return fmt.Errorf("username %q is longer than %d bytes", peer, domain.MaxUsernameLength)
	}

	return nil
}

func malformed(token string, reason string) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrMalformed, token, reason)
}
