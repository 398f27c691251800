// Package ledger tracks requests that are still waiting for a server reply.
//
// Replies carry no request identifier, so a reply is matched by verb
// category alone: SendAck matches the most recent pending SendMessage
// whatever peer it was addressed to. Two SendMessage requests in flight at
// the same time can therefore be matched out of order.
package ledger

import "github.com/bnema/me2u/internal/domain"

var expectedRequest = map[domain.Verb]domain.Verb{
	domain.VerbConnectAck:           domain.VerbConnect,
	domain.VerbUsernameTaken:        domain.VerbRegisterUsername,
	domain.VerbUsernameOk:           domain.VerbRegisterUsername,
	domain.VerbListUsersResponse:    domain.VerbListUsers,
	domain.VerbSendAck:              domain.VerbSendMessage,
	domain.VerbSendRecipientMissing: domain.VerbSendMessage,
	domain.VerbLogoutAck:            domain.VerbLogout,
}

// Expects reports whether a request verb is answered by the server and so
// belongs in the ledger.
func Expects(request domain.Verb) bool {
	for _, v := range expectedRequest {
		if v == request {
			return true
		}
	}
	return false
}

// ExpectedRequest returns the request verb a response answers. ok is false
// for unsolicited pushes.
func ExpectedRequest(response domain.Verb) (domain.Verb, bool) {
	request, ok := expectedRequest[response]
	return request, ok
}

type Ledger struct {
	pending map[domain.Verb][]domain.Message
}

func New() *Ledger {
	return &Ledger{pending: map[domain.Verb][]domain.Message{}}
}

// Push records a sent request. Requests that expect no reply are ignored.
func (l *Ledger) Push(request domain.Message) {
	if !Expects(request.Verb) {
		return
	}
	l.pending[request.Verb] = append(l.pending[request.Verb], request)
}

// Match removes and returns the most recently pushed request answered by
// response. Unsolicited verbs never match and never mutate the ledger.
func (l *Ledger) Match(response domain.Verb) (domain.Message, bool) {
	request, ok := expectedRequest[response]
	if !ok {
		return domain.Message{}, false
	}

	queue := l.pending[request]
	if len(queue) == 0 {
		return domain.Message{}, false
	}

	last := queue[len(queue)-1]
	queue = queue[:len(queue)-1]
	if len(queue) == 0 {
		delete(l.pending, request)
	} else {
		l.pending[request] = queue
	}

	return last, true
}

func (l *Ledger) Pending(request domain.Verb) []domain.Message {
	return append([]domain.Message(nil), l.pending[request]...)
}

func (l *Ledger) Len() int {
	n := 0
	for _, queue := range l.pending {
		n += len(queue)
	}
	return n
}
