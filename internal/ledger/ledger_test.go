package ledger

import (
	"testing"

	"github.com/bnema/me2u/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendMessage(peer, body string) domain.Message {
	return domain.Message{Verb: domain.VerbSendMessage, Peer: peer, Body: body, Direction: domain.Outgoing}
}

func TestSendAckRemovesMostRecentSendMessageRegardlessOfPeer(t *testing.T) {
	l := New()
	l.Push(sendMessage("alice", "first"))
	l.Push(sendMessage("bob", "second"))
	require.Equal(t, 2, l.Len())

	// The ack names alice but the bob request is the one removed.
	matched, ok := l.Match(domain.VerbSendAck)
	require.True(t, ok)
	assert.Equal(t, "bob", matched.Peer)
	assert.Equal(t, 1, l.Len())

	remaining := l.Pending(domain.VerbSendMessage)
	require.Len(t, remaining, 1)
	assert.Equal(t, "alice", remaining[0].Peer)
}

func TestRecipientMissingMatchesSendMessage(t *testing.T) {
	l := New()
	l.Push(sendMessage("eve", "hi"))

	matched, ok := l.Match(domain.VerbSendRecipientMissing)
	require.True(t, ok)
	assert.Equal(t, "eve", matched.Peer)
	assert.Zero(t, l.Len())
}

func TestMatchByCategory(t *testing.T) {
	tests := []struct {
		request  domain.Verb
		response domain.Verb
	}{
		{request: domain.VerbConnect, response: domain.VerbConnectAck},
		{request: domain.VerbRegisterUsername, response: domain.VerbUsernameOk},
		{request: domain.VerbRegisterUsername, response: domain.VerbUsernameTaken},
		{request: domain.VerbListUsers, response: domain.VerbListUsersResponse},
		{request: domain.VerbLogout, response: domain.VerbLogoutAck},
	}

	for _, tt := range tests {
		t.Run(tt.response.String(), func(t *testing.T) {
			l := New()
			l.Push(domain.Message{Verb: tt.request})

			_, ok := l.Match(tt.response)
			require.True(t, ok)
			assert.Zero(t, l.Len())

			_, ok = l.Match(tt.response)
			assert.False(t, ok)
		})
	}
}

func TestMatchDoesNotCrossCategories(t *testing.T) {
	l := New()
	l.Push(domain.Message{Verb: domain.VerbListUsers})

	_, ok := l.Match(domain.VerbSendAck)
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())
}

func TestUnsolicitedPushesNeverTouchLedger(t *testing.T) {
	l := New()
	l.Push(sendMessage("dave", "hi"))

	for _, verb := range []domain.Verb{domain.VerbReceiveMessage, domain.VerbUserLoggedOff, domain.VerbDailyMessage} {
		_, ok := l.Match(verb)
		assert.False(t, ok, verb.String())
	}
	assert.Equal(t, 1, l.Len())
}

func TestPushIgnoresRequestsWithoutReply(t *testing.T) {
	l := New()
	l.Push(domain.Message{Verb: domain.VerbReceiveAck, Peer: "dave"})
	assert.Zero(t, l.Len())
}

func TestExpects(t *testing.T) {
	assert.True(t, Expects(domain.VerbConnect))
	assert.True(t, Expects(domain.VerbSendMessage))
	assert.False(t, Expects(domain.VerbReceiveAck))
	assert.False(t, Expects(domain.VerbHelp))

	request, ok := ExpectedRequest(domain.VerbSendRecipientMissing)
	require.True(t, ok)
	assert.Equal(t, domain.VerbSendMessage, request)
}
